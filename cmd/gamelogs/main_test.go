package main

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/riskibarqy/nba-gamelogs/internal/domain/buildrun"
	"github.com/riskibarqy/nba-gamelogs/internal/domain/gamelog"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/logging"
	"github.com/riskibarqy/nba-gamelogs/internal/usecase"
)

func TestLogTargets_LevelFollowsOutcome(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := logging.FromZap(zap.New(core))

	coverageErr := errors.New("incomplete coverage for 2025-26 Regular Season")
	logTargets(logger, []usecase.TargetReport{
		{Season: "2025-26", SeasonType: gamelog.RegularSeason, Outcome: buildrun.OutcomePublished},
		{Season: "2025-26", SeasonType: gamelog.RegularSeason, Outcome: buildrun.OutcomeFallback, Err: coverageErr},
		{Season: "2024-25", SeasonType: gamelog.RegularSeason, Outcome: buildrun.OutcomeFailed, Err: coverageErr},
	})

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got=%d", len(entries))
	}
	want := []struct {
		level   zapcore.Level
		message string
	}{
		{zapcore.InfoLevel, "target done"},
		{zapcore.WarnLevel, "target kept previous dataset"},
		{zapcore.ErrorLevel, "target failed"},
	}
	for i, w := range want {
		if entries[i].Level != w.level || entries[i].Message != w.message {
			t.Fatalf("entry %d: want %s %q, got %s %q", i, w.level, w.message, entries[i].Level, entries[i].Message)
		}
	}
	if entries[1].ContextMap()["error"] == nil {
		t.Fatalf("fallback entry should carry the coverage error")
	}
}
