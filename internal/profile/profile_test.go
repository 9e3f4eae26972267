package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	p := &Profile{Mode: "bogus"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "demo", p.Mode)
	assert.Equal(t, "memory", p.Driver)
}

func TestValidateDriver(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{"memory needs nothing", Profile{Mode: "dev"}, false},
		{"sqlite without data or dsn", Profile{Mode: "dev", Driver: "sqlite"}, true},
		{"sqlite with dsn", Profile{Mode: "dev", Driver: "sqlite", DSN: "/tmp/planwise.db"}, false},
		{"postgres without dsn", Profile{Mode: "dev", Driver: "postgres"}, true},
		{"unknown driver", Profile{Mode: "dev", Driver: "oracle"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromEnvDefaults(t *testing.T) {
	p := &Profile{}
	p.FromEnv()
	assert.Equal(t, 20, p.SessionHistoryLimit)
	assert.Equal(t, 120, p.FollowUpTTLSeconds)
	assert.InDelta(t, 10, p.ChatRatePerSecond, 0.01)
}

func TestFlagPrecedenceOverEnv(t *testing.T) {
	t.Setenv("PLANWISE_SESSION_HISTORY_LIMIT", "5")
	p := &Profile{SessionHistoryLimit: 30}
	p.FromEnv()
	assert.Equal(t, 30, p.SessionHistoryLimit)

	p2 := &Profile{}
	p2.FromEnv()
	assert.Equal(t, 5, p2.SessionHistoryLimit)
}
