package connection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMongoDB_GenerateConnectionString(t *testing.T) {
	tests := []struct {
		name string
		m    MongoDB
		want string
	}{
		{
			name: "host only",
			m:    MongoDB{Host: "cluster.example.com"},
			want: "mongodb+srv://cluster.example.com",
		},
		{
			name: "credentials",
			m:    MongoDB{Username: "wolf", Password: "pw", Host: "cluster.example.com"},
			want: "mongodb+srv://wolf:pw@cluster.example.com",
		},
		{
			name: "user, port and args",
			m:    MongoDB{Username: "wolf", Host: "db", Port: "27017", Args: "retryWrites=true"},
			want: "mongodb+srv://wolf@db:27017/?retryWrites=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.m.GenerateConnectionString()
			require.Equal(t, tt.want, tt.m.ConnectionString)
		})
	}
}
