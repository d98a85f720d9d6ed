package utils

import (
	"os"
	"testing"

	"github.com/mentorhub/forum/config"
)

func TestMain(m *testing.M) {
	config.Override(config.AppConfig{JWTSecret: "test-secret"})
	SetRedis(nil)
	os.Exit(m.Run())
}
