package fetcher

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.DenyPrivateIPs, "SSRF protection must default on")
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxBodySize)
	assert.Equal(t, 5, cfg.MaxRedirects)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: "timeout must be positive"},
		{name: "tiny body", mutate: func(c *Config) { c.MaxBodySize = 100 }, wantErr: "max body size"},
		{name: "huge body", mutate: func(c *Config) { c.MaxBodySize = 1 << 40 }, wantErr: "max body size"},
		{name: "negative redirects", mutate: func(c *Config) { c.MaxRedirects = -1 }, wantErr: "max redirects"},
		{name: "too many redirects", mutate: func(c *Config) { c.MaxRedirects = 11 }, wantErr: "max redirects"},
		{name: "zero redirects allowed", mutate: func(c *Config) { c.MaxRedirects = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfigValidate_ReportsAll(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()

	assert.ErrorContains(t, err, "timeout")
	assert.ErrorContains(t, err, "max body size")
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.31.255.255", true},
		{"172.32.0.1", false},
		{"192.168.0.10", true},
		{"169.254.169.254", true},
		{"0.0.0.0", true},
		{"::1", true},
		{"fd00::1", true},
		{"fe80::1", true},
		{"8.8.8.8", false},
		{"2606:4700:4700::1111", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, isPrivateIP(net.ParseIP(tt.ip)))
		})
	}
}
