package main

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/e2etest"
	"github.com/burinious/burinious-weight-coach/internal/testhelpers"
)

func Test_application_plan(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	client := server.Client()

	t.Run("Before the program starts", func(t *testing.T) {
		doc, err := client.GetDoc(ctx, "/plan")
		if err != nil {
			t.Fatalf("Failed to get plan: %v", err)
		}

		if !strings.Contains(doc.Text(), "generated when you start") {
			t.Error("Expected a hint that the plan appears after starting")
		}
	})

	t.Run("After the program starts", func(t *testing.T) {
		doc, err := client.GetDoc(ctx, "/settings")
		if err != nil {
			t.Fatalf("Failed to get settings: %v", err)
		}
		if _, err = client.SubmitForm(ctx, doc, "/settings/start", nil); err != nil {
			t.Fatalf("Failed to start program: %v", err)
		}

		if doc, err = client.GetDoc(ctx, "/plan"); err != nil {
			t.Fatalf("Failed to get plan: %v", err)
		}

		if doc.Find("h2:contains(Week)").Length() == 0 {
			t.Error("Expected the plan to be grouped into weeks")
		}
		// The default 90-day program spans 13 weeks.
		if got := doc.Find("section.plan-week").Length(); got != 13 {
			t.Errorf("Expected 13 week sections, got %d", got)
		}
		if doc.Find("article.plan-day.today").Length() != 1 {
			t.Error("Expected exactly one day marked as today")
		}
	})

	t.Run("Editing notes", func(t *testing.T) {
		doc, err := client.GetDoc(ctx, "/plan")
		if err != nil {
			t.Fatalf("Failed to get plan: %v", err)
		}

		today := time.Now().UTC().Format(time.DateOnly)
		doc, err = client.SubmitForm(ctx, doc, "/plan/"+today+"/notes", map[string]string{
			"Notes": "Felt **strong** today",
		})
		if err != nil {
			t.Fatalf("Failed to submit notes: %v", err)
		}

		if !strings.Contains(doc.Text(), "Notes saved.") {
			t.Error("Expected a confirmation after saving notes")
		}
		if doc.Find("article.plan-day.today strong").Length() == 0 {
			t.Error("Expected the notes markdown to be rendered")
		}
	})

	t.Run("Notes for a day outside the plan", func(t *testing.T) {
		resp, err := client.Post(ctx, "/plan/1999-01-01/notes", url.Values{"notes": {"out of range"}})
		if err != nil {
			t.Fatalf("Failed to post notes: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status 404 for a day outside the plan, got %d", resp.StatusCode)
		}
	})
}
