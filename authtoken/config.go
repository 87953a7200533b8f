package authtoken

import (
	"academy/common"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultIssuer = "academy"
	DefaultTTL    = time.Hour
)

type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// ConfigFromEnv reads JWT_SECRET, JWT_ISSUER and JWT_TTL. Without JWT_SECRET a random secret is
// generated, so tokens do not survive a restart.
func ConfigFromEnv() Config {
	secret := common.EnvString("JWT_SECRET", "")
	if secret == "" {
		logrus.Warn("JWT_SECRET is not set, a random signing secret is used")
		secret = uuid.New().String() + uuid.New().String()
	}
	return Config{
		Secret: []byte(secret),
		Issuer: common.EnvString("JWT_ISSUER", DefaultIssuer),
		TTL:    common.EnvDuration("JWT_TTL", DefaultTTL),
	}
}
