package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartSchedulers wires the background jobs:
//   - every minute, settle matured stakes (lazy withdrawal still works if a
//     sweep is missed — settle is guarded by the status flip either way)
//   - once a day, export last month's statements to object storage
func StartSchedulers(staking *StakingService, statements *StatementService) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal("failed to create scheduler:", err)
	}
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(staking.SweepMatured),
	)

	_, _ = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(2, 0, 0))),
		gocron.NewTask(statements.ExportMonthly),
	)
}
