package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_conversations_created_total",
		Help: "Conversations created by the resolver",
	})

	conversationRaceRecovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_conversation_create_races_total",
		Help: "Concurrent creates of the same pair resolved by re-lookup",
	})

	messagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dm_messages_sent_total",
			Help: "Messages appended, by attachment type",
		},
		[]string{"attachment_type"},
	)

	messagesUnsent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_messages_unsent_total",
		Help: "Messages soft-deleted by their sender",
	})

	reactionChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dm_reaction_changes_total",
			Help: "Reaction toggles by outcome",
		},
		[]string{"change"},
	)
)
