package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "wolf", want: "ticket-wolf"},
		{name: "spaces", in: "  Big   Wolf ", want: "ticket-big-wolf"},
		{name: "empty", in: "", want: "ticket-user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ChannelName(tt.in))
			require.Equal(t, tt.want, (&Ticket{OwnerName: tt.in}).Name())
		})
	}
}
