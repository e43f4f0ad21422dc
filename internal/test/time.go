package test

import (
	"time"

	"github.com/polkiloo/phonetrack/internal/domain/model"
)

func toTime(ts *model.Timestamp) time.Time {
	return time.Time(*ts).UTC()
}
