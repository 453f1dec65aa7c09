// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package util

import (
	"runtime"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// PerfStats records the time and memory allocation at the start of some
// phase, so the cost of that phase can be logged once it completes.
type PerfStats struct {
	// Starting time
	startTime time.Time
	// Starting total memory allocation
	startMem uint64
	// Starting number of gc events
	startGc uint32
}

// NewPerfStats creates a new snapshot of the current time and memory
// allocation.
func NewPerfStats() *PerfStats {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	return &PerfStats{time.Now(), m.TotalAlloc, m.NumGC}
}

// Log logs (at debug level) the time taken and memory allocated since this
// snapshot was created.
func (p *PerfStats) Log(phase string) {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	log.WithFields(log.Fields{
		"time":  time.Since(p.startTime).Round(time.Microsecond).String(),
		"alloc": formatBytes(m.TotalAlloc - p.startMem),
		"gc":    m.NumGC - p.startGc,
	}).Debugf("%s complete", phase)
}

func formatBytes(n uint64) string {
	const unit = 1024
	//
	units := []string{"B", "KiB", "MiB", "GiB"}
	value := float64(n)
	//
	for _, u := range units[:len(units)-1] {
		if value < unit {
			return formatFloat(value, u)
		}
		//
		value /= unit
	}
	//
	return formatFloat(value, units[len(units)-1])
}

func formatFloat(v float64, unit string) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + unit
}
