package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/dependahunt/pkg/domain/model"
	"github.com/m-mizutani/dependahunt/pkg/usecase"
)

func TestCorrelate(t *testing.T) {
	lodashAlert := model.Alert{
		Number:          7,
		CVEID:           "CVE-2021-23337",
		PackageName:     "lodash",
		Ecosystem:       "npm",
		VulnerableRange: "< 4.17.21",
		PatchedVersion:  "4.17.21",
		Severity:        "high",
	}

	t.Run("update remediates matching alert", func(t *testing.T) {
		updates := []model.PackageUpdate{
			{Name: "lodash", FromVersion: "4.17.20", ToVersion: "4.17.21"},
		}

		got := usecase.Correlate(updates, []model.Alert{lodashAlert})
		gt.Equal(t, len(got), 1)
		gt.Equal(t, len(got[0].MatchedAlerts), 1)
		gt.Equal(t, got[0].MatchedAlerts[0].CVEID, "CVE-2021-23337")
		gt.True(t, got[0].Remediated)
		// Ecosystem is backfilled from the alert.
		gt.Equal(t, got[0].Update.Ecosystem, "npm")
	})

	t.Run("update stops short of patched version", func(t *testing.T) {
		updates := []model.PackageUpdate{
			{Name: "lodash", FromVersion: "4.17.19", ToVersion: "4.17.20"},
		}

		got := usecase.Correlate(updates, []model.Alert{lodashAlert})
		gt.Equal(t, len(got[0].MatchedAlerts), 1)
		gt.Equal(t, got[0].Remediated, false)
	})

	t.Run("package name match is exact", func(t *testing.T) {
		updates := []model.PackageUpdate{
			{Name: "lodash-es", FromVersion: "4.17.20", ToVersion: "4.17.21"},
		}

		got := usecase.Correlate(updates, []model.Alert{lodashAlert})
		gt.Equal(t, len(got[0].MatchedAlerts), 0)
		gt.True(t, got[0].Remediated)
	})

	t.Run("from version outside vulnerable range", func(t *testing.T) {
		updates := []model.PackageUpdate{
			{Name: "lodash", FromVersion: "4.17.21", ToVersion: "4.17.22"},
		}

		got := usecase.Correlate(updates, []model.Alert{lodashAlert})
		gt.Equal(t, len(got[0].MatchedAlerts), 0)
	})

	t.Run("unparseable version keeps the alert matched", func(t *testing.T) {
		updates := []model.PackageUpdate{
			{Name: "lodash", FromVersion: "not-a-version", ToVersion: "also-not"},
		}

		got := usecase.Correlate(updates, []model.Alert{lodashAlert})
		gt.Equal(t, len(got[0].MatchedAlerts), 1)
		gt.Equal(t, got[0].Remediated, false)
	})

	t.Run("multiple alerts, one unresolved", func(t *testing.T) {
		second := model.Alert{
			Number:          8,
			GHSAID:          "GHSA-xxxx-yyyy-zzzz",
			PackageName:     "lodash",
			VulnerableRange: "< 5.0.0",
			PatchedVersion:  "5.0.0",
		}
		updates := []model.PackageUpdate{
			{Name: "lodash", FromVersion: "4.17.20", ToVersion: "4.17.21"},
		}

		got := usecase.Correlate(updates, []model.Alert{lodashAlert, second})
		gt.Equal(t, len(got[0].MatchedAlerts), 2)
		gt.Equal(t, got[0].Remediated, false)
	})

	t.Run("compound range expression", func(t *testing.T) {
		alert := model.Alert{
			Number:          9,
			CVEID:           "CVE-2024-0001",
			PackageName:     "express",
			VulnerableRange: ">= 4.0.0, < 4.19.2",
			PatchedVersion:  "4.19.2",
		}
		updates := []model.PackageUpdate{
			{Name: "express", FromVersion: "4.18.0", ToVersion: "4.19.2"},
		}

		got := usecase.Correlate(updates, []model.Alert{alert})
		gt.Equal(t, len(got[0].MatchedAlerts), 1)
		gt.True(t, got[0].Remediated)
	})

	t.Run("package with no alerts is still emitted", func(t *testing.T) {
		updates := []model.PackageUpdate{
			{Name: "chalk", FromVersion: "5.0.0", ToVersion: "5.3.0"},
		}

		got := usecase.Correlate(updates, []model.Alert{lodashAlert})
		gt.Equal(t, len(got), 1)
		gt.Equal(t, len(got[0].MatchedAlerts), 0)
		gt.True(t, got[0].Remediated)
	})
}

func TestFilterUpdates(t *testing.T) {
	updates := []model.PackageUpdate{
		{Name: "lodash", FromVersion: "4.17.20", ToVersion: "4.17.21"},
		{Name: "express", FromVersion: "4.18.0", ToVersion: "4.19.2"},
	}

	t.Run("empty filter keeps all", func(t *testing.T) {
		got, found := usecase.FilterUpdates(updates, "")
		gt.True(t, found)
		gt.Equal(t, len(got), 2)
	})

	t.Run("matching filter narrows to one", func(t *testing.T) {
		got, found := usecase.FilterUpdates(updates, "express")
		gt.True(t, found)
		gt.Equal(t, len(got), 1)
		gt.Equal(t, got[0].Name, "express")
	})

	t.Run("unknown package reports not found", func(t *testing.T) {
		got, found := usecase.FilterUpdates(updates, "left-pad")
		gt.Equal(t, found, false)
		gt.Equal(t, len(got), 0)
	})

	t.Run("filter is exact, not substring", func(t *testing.T) {
		_, found := usecase.FilterUpdates(updates, "lod")
		gt.Equal(t, found, false)
	})
}

func TestFilterAlertsBySeverity(t *testing.T) {
	alerts := []model.Alert{
		{Number: 1, PackageName: "a", Severity: "low"},
		{Number: 2, PackageName: "b", Severity: "medium"},
		{Number: 3, PackageName: "c", Severity: "CRITICAL"},
		{Number: 4, PackageName: "d", Severity: ""},
	}

	t.Run("drops alerts below minimum", func(t *testing.T) {
		got := usecase.FilterAlertsBySeverity(alerts, "medium")
		gt.Equal(t, len(got), 3)
		gt.Equal(t, got[0].Number, 2)
	})

	t.Run("unknown severity is kept", func(t *testing.T) {
		got := usecase.FilterAlertsBySeverity(alerts, "critical")
		gt.Equal(t, len(got), 2) // critical + unknown
	})

	t.Run("unknown minimum disables filtering", func(t *testing.T) {
		got := usecase.FilterAlertsBySeverity(alerts, "severe")
		gt.Equal(t, len(got), 4)
	})
}
