package repository

type Room struct {
	OwnerId         string `redis:"owner_id"`
	Status          string `redis:"status"`
	CooldownMs      int    `redis:"cooldown_ms"`
	AllowComments   bool   `redis:"allow_comments"`
	AllowAnonymous  bool   `redis:"allow_anonymous"`
	ModerationLevel int    `redis:"moderation_level"`
}

type User struct {
	Username string `redis:"username"`
	Level    int    `redis:"level"`
}
