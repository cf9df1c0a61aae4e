// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"
)

// SyncWorker keeps a periodic sync job running for the lifetime of Run.
type SyncWorker struct {
	job      Job
	interval time.Duration
}

func NewSyncWorker(job Job, interval time.Duration) *SyncWorker {
	return &SyncWorker{job: job, interval: interval}
}

func (s *SyncWorker) Run(ctx context.Context) {
	s.job.Start(ctx, s.interval)
	<-ctx.Done()
	s.job.Stop()
}
