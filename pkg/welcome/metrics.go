package welcome

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WelcomeMessages is the number of welcome messages by outcome.
var WelcomeMessages = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "welcome_messages_total",
		Help: "Total number of welcome messages by outcome",
	},
	[]string{"result"},
)
