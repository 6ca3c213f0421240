package config_test

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/alwitt/bluelight/config"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func writeConfigFile(t *testing.T, content string) string {
	assert := assert.New(t)
	path := fmt.Sprintf("/tmp/bluelight_ut_%s.yaml", ulid.Make().String())
	assert.Nil(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfigDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := config.Load("")
	assert.Nil(err)
	assert.Equal(":8080", cfg.HTTP.ListenAddr)
	assert.Equal("sqlite", cfg.Database.Dialect)
	assert.Equal(logger.Error, cfg.Database.SQLLogLevel())
	assert.Equal("local", cfg.Attachments.Backend)

	// Defaults have no token secret, which is only fine with the system actor
	assert.NotNil(cfg.Validate())
	cfg.Auth.SystemActorEnabled = true
	assert.Nil(cfg.Validate())
}

func TestConfigLoadFile(t *testing.T) {
	assert := assert.New(t)

	path := writeConfigFile(t, `
log_level: debug
http:
  listen_addr: "127.0.0.1:9000"
  shutdown_timeout: 3s
database:
  dialect: postgres
  postgres_dsn: "host=localhost user=etb dbname=etb"
  log_level: warn
auth:
  jwt_secret: "0123456789abcdef0123"
  jwt_issuer: bluelight-auth
attachments:
  backend: s3
  max_upload_bytes: 1048576
  s3:
    bucket: etb-anlagen
    endpoint: "http://minio:9000"
    use_path_style: true
  encryption:
    enabled: true
    rsa_cert_file: /etc/bluelight/rsa.crt
    rsa_key_file: /etc/bluelight/rsa.key
`)

	cfg, err := config.Load(path)
	assert.Nil(err)
	assert.Nil(cfg.Validate())

	assert.Equal("debug", cfg.LogLevel)
	assert.Equal("127.0.0.1:9000", cfg.HTTP.ListenAddr)
	assert.Equal(3*time.Second, cfg.HTTP.ShutdownTimeout)
	// Unset values keep their defaults
	assert.Equal(30*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal("postgres", cfg.Database.Dialect)
	assert.Equal(logger.Warn, cfg.Database.SQLLogLevel())
	assert.Equal("bluelight-auth", cfg.Auth.JWTIssuer)
	assert.Equal("etb-anlagen", cfg.Attachments.S3.Bucket)
	assert.Equal("eu-central-1", cfg.Attachments.S3.Region)
	assert.True(cfg.Attachments.S3.UsePathStyle)
	assert.True(cfg.Attachments.Encryption.Enabled)
	assert.Equal(int64(1048576), cfg.Attachments.MaxUploadBytes)
}

func TestConfigValidation(t *testing.T) {
	assert := assert.New(t)

	valid := func() config.Config {
		cfg := config.Default()
		cfg.Auth.JWTSecret = "0123456789abcdef0123"
		return cfg
	}
	assert.Nil(valid().Validate())

	cfg := valid()
	cfg.Database.Dialect = "mysql"
	assert.NotNil(cfg.Validate())

	cfg = valid()
	cfg.Database.Dialect = "postgres"
	assert.NotNil(cfg.Validate())

	cfg = valid()
	cfg.Auth.JWTSecret = "kurz"
	assert.NotNil(cfg.Validate())

	cfg = valid()
	cfg.Attachments.Backend = "s3"
	assert.NotNil(cfg.Validate())

	cfg = valid()
	cfg.Attachments.Encryption.Enabled = true
	assert.NotNil(cfg.Validate())

	cfg = valid()
	cfg.LogLevel = "verbose"
	assert.NotNil(cfg.Validate())

	// Broken YAML
	_, err := config.Load(writeConfigFile(t, "http: [unclosed"))
	assert.NotNil(err)

	_, err = config.Load("/tmp/bluelight_ut_does_not_exist.yaml")
	assert.NotNil(err)
}
