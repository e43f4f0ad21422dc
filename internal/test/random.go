package test

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/phonetrack/internal/domain/model"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomPhoneNumber returns a ten digit US number formatted as NNN-NNN-NNNN.
// Area and exchange codes never start with 0 or 1.
func RandomPhoneNumber() string {
	return fmt.Sprintf("%d%02d-%d%02d-%04d",
		2+randomIntn(8), randomIntn(100),
		2+randomIntn(8), randomIntn(100),
		randomIntn(10000))
}

// RandomRecord returns a record with a fresh id and random number.
func RandomRecord() model.PhoneNumber {
	spent := float64(randomIntn(10000)) / 100
	return model.PhoneNumber{
		ID:             uuid.New(),
		Number:         RandomPhoneNumber(),
		HasRedeemValue: randomIntn(2) == 1,
		AmountSpent:    spent,
		NumberOfPoints: int(spent),
	}
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
