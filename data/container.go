// Package data keeps the glossary engine currently in service. The engine is
// swapped atomically on reload so requests never see a half-built glossary.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/cardioexplain-api/explainer"
	"github.com/giygas/cardioexplain-api/glossary"
	"github.com/giygas/cardioexplain-api/interfaces"
	"github.com/giygas/cardioexplain-api/logging"
)

// Compile-time check to ensure GlossaryContainer implements GlossaryStore
var _ interfaces.GlossaryStore = (*GlossaryContainer)(nil)

// reloadError wraps the last reload error so atomic.Value always stores one concrete type
type reloadError struct {
	err error
}

// GlossaryContainer holds the active engine and its load metadata
type GlossaryContainer struct {
	engine          atomic.Pointer[explainer.Engine]
	quality         atomic.Pointer[interfaces.GlossaryQualityReport]
	lastUpdated     atomic.Value // time.Time
	lastReloadError atomic.Value // reloadError
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewGlossaryContainer creates a container serving an empty glossary until
// the first load completes.
func NewGlossaryContainer() *GlossaryContainer {
	gc := &GlossaryContainer{}
	gc.engine.Store(explainer.MustNewEngine(glossary.Empty()))
	gc.quality.Store(&interfaces.GlossaryQualityReport{})
	gc.lastUpdated.Store(time.Time{})
	gc.lastReloadError.Store(reloadError{})
	gc.serverStartTime.Store(time.Time{})
	return gc
}

// Engine returns the engine currently in service
func (gc *GlossaryContainer) Engine() *explainer.Engine {
	if e := gc.engine.Load(); e != nil {
		return e
	}

	logging.Warn("Glossary engine is not initialised, serving an empty glossary")
	return explainer.MustNewEngine(glossary.Empty())
}

// Glossary returns the glossary behind the current engine
func (gc *GlossaryContainer) Glossary() *glossary.Glossary {
	return gc.Engine().Glossary()
}

// QualityReport returns the quality report of the current glossary
func (gc *GlossaryContainer) QualityReport() *interfaces.GlossaryQualityReport {
	if r := gc.quality.Load(); r != nil {
		return r
	}
	return &interfaces.GlossaryQualityReport{}
}

// GetLastUpdated returns when the current glossary was installed
func (gc *GlossaryContainer) GetLastUpdated() time.Time {
	if v := gc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// LastReloadError returns the error of the most recent reload attempt, nil
// when it succeeded
func (gc *GlossaryContainer) LastReloadError() error {
	if v, ok := gc.lastReloadError.Load().(reloadError); ok {
		return v.err
	}
	return nil
}

// IsUpdating returns true if a reload is currently in progress
func (gc *GlossaryContainer) IsUpdating() bool {
	return gc.updating.Load()
}

// SetServerStartTime sets the server start time
func (gc *GlossaryContainer) SetServerStartTime(startTime time.Time) {
	gc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (gc *GlossaryContainer) GetServerStartTime() time.Time {
	if v := gc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateEngine installs a new engine and clears the last reload error
func (gc *GlossaryContainer) UpdateEngine(engine *explainer.Engine, report *interfaces.GlossaryQualityReport) {
	if engine == nil {
		logging.Warn("Ignoring update with a nil engine")
		return
	}
	if report == nil {
		report = &interfaces.GlossaryQualityReport{}
	}

	gc.engine.Store(engine)
	gc.quality.Store(report)
	gc.lastUpdated.Store(time.Now())
	gc.lastReloadError.Store(reloadError{})
}

// RecordReloadError remembers a failed reload. The current engine stays in service.
func (gc *GlossaryContainer) RecordReloadError(err error) {
	gc.lastReloadError.Store(reloadError{err: err})
}

// BeginUpdate marks the start of a reload.
// Returns true if the reload can proceed, false if another one is in progress
func (gc *GlossaryContainer) BeginUpdate() bool {
	return gc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a reload
func (gc *GlossaryContainer) EndUpdate() {
	gc.updating.Store(false)
}
