package discord

type SystemEventType string

const (
	// SystemEventResync asks the bot to sync the registry with Discord again,
	// e.g. after a cog was added or torn down at runtime.
	SystemEventResync SystemEventType = "resync"
)

type SystemEvent struct {
	Type    SystemEventType
	GuildID string
	Mode    string
}

type systemEventBus chan SystemEvent

func newSystemEventBus() systemEventBus {
	return make(systemEventBus, 16)
}

// publish never blocks; events are dropped while the bus is full.
func (b systemEventBus) publish(evt SystemEvent) bool {
	select {
	case b <- evt:
		return true
	default:
		return false
	}
}
