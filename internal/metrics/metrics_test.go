// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()
	r.ObserveDocument(0, 0)
	r.ObserveDocument(3, 1)
	r.ObserveDocument(1, 0)
	r.ObserveSkipped()

	assert.InDelta(t, 1, testutil.ToFloat64(r.documents.WithLabelValues(ResultValid)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.documents.WithLabelValues(ResultInvalid)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.documents.WithLabelValues(ResultSkipped)), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(r.violations), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.cycleHits), 0)
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveDocument(2, 0)
	r.ObserveRun(1500 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "validate.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `validate_documents_total{result="invalid"} 1`)
	assert.Contains(t, out, `validate_documents_total{result="valid"} 0`)
	assert.Contains(t, out, "validate_violations_total 2")
	assert.Contains(t, out, "validate_run_duration_seconds 1.5")
}
