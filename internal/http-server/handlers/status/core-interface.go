package status

import (
	"weatherbot/entity"
)

type Core interface {
	QuotaStatus() entity.QuotaStatus
	ActorStats(actorID int64) entity.ActorStats
	Unblock(actorID int64) bool
}
