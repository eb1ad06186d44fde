package repository

type SetRoomParams struct {
	RoomId          string
	OwnerId         string
	Status          string
	CooldownMs      int
	AllowComments   bool
	AllowAnonymous  bool
	ModerationLevel int
}

type UpdateRoomSettingsParams struct {
	RoomId          string
	CooldownMs      int
	AllowComments   bool
	AllowAnonymous  bool
	ModerationLevel int
}

type SetUserParams struct {
	UserId   string
	Username string
	Level    int
}

type AddSubscriberParams struct {
	RoomId   string
	ClientId string
}

type RemoveSubscriberParams struct {
	RoomId   string
	ClientId string
}
