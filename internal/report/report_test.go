package report

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"intellitest/internal/bank"
	"intellitest/internal/domain"
	"intellitest/internal/scoring"
)

func sampleResult(t *testing.T) domain.ScoreResult {
	t.Helper()
	b, err := bank.NewEmbeddedLoader().LoadBank(context.Background(), "test-d")
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	answers := domain.NewAnswerSet(b.Size())
	for i, q := range b.Flatten() {
		if i%3 != 0 {
			answers[i] = q.CorrectAnswer
		}
	}
	completed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return scoring.BuildResult(b, answers, 1234, domain.Profile{Email: "ada@example.com"}, completed)
}

func TestFlatten(t *testing.T) {
	r := sampleResult(t)
	flat := Flatten(r)

	if flat["rawScore"] != "40" || flat["iq"] != "115" || flat["classification.label"] != r.Classification.Label {
		t.Fatalf("unexpected headline fields: raw=%s iq=%s label=%s", flat["rawScore"], flat["iq"], flat["classification.label"])
	}
	if flat["timeSpent"] != "20:34" || flat["testVersion"] != "test-d" {
		t.Fatalf("unexpected time or version: %s %s", flat["timeSpent"], flat["testVersion"])
	}
	for i := 1; i <= 4; i++ {
		if _, ok := flat["domains."+string(rune('0'+i))+".percentage"]; !ok {
			t.Fatalf("missing domain %d in flat document", i)
		}
	}
	if flat["comparisons.generalPopulation.position"] != "above" {
		t.Fatalf("expected above general population, got %s", flat["comparisons.generalPopulation.position"])
	}
}

func TestTextIsSorted(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(Text(sampleResult(t))), "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i-1] > lines[i] {
			t.Fatalf("lines out of order: %q before %q", lines[i-1], lines[i])
		}
	}
}

func TestWorkbookSheets(t *testing.T) {
	r := sampleResult(t)
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, r); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	want := []string{SheetOverview, SheetDomains, SheetCareers, SheetComparisons, SheetMeaning}
	if got := f.GetSheetList(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected sheets %v, got %v", want, got)
	}
	iq, err := f.GetCellValue(SheetOverview, "B5")
	if err != nil || iq != "115" {
		t.Fatalf("expected IQ 115 in overview, got %q (%v)", iq, err)
	}
	rows, err := f.GetRows(SheetDomains)
	if err != nil || len(rows) != 5 {
		t.Fatalf("expected header plus four domains, got %d rows (%v)", len(rows), err)
	}
	if rows[1][0] != r.Breakdown[0].Name {
		t.Fatalf("domains sheet not in ranked order: %v", rows[1])
	}
}

func TestNewMailerFallsBackToLog(t *testing.T) {
	if _, ok := NewMailer(SMTPConfig{}).(LogMailer); !ok {
		t.Fatalf("expected LogMailer without smtp host")
	}
	if _, ok := NewMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"}).(*SMTPMailer); !ok {
		t.Fatalf("expected SMTPMailer when configured")
	}
	if err := (LogMailer{}).SendResult(context.Background(), "ada@example.com", sampleResult(t)); err != nil {
		t.Fatalf("log mailer: %v", err)
	}
}

func TestSMTPMailerSendsSummary(t *testing.T) {
	m := NewMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, User: "u", Pass: "p", From: "noreply@example.com"}).(*SMTPMailer)
	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	if err := m.SendResult(context.Background(), "ada@example.com", sampleResult(t)); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || len(gotTo) != 1 || gotTo[0] != "ada@example.com" {
		t.Fatalf("unexpected envelope %s %v", gotAddr, gotTo)
	}
	if !bytes.Contains(gotMsg, []byte("Subject: Your IQ assessment results: 115")) || !bytes.Contains(gotMsg, []byte("iq: 115\r\n")) {
		t.Fatalf("unexpected message:\n%s", gotMsg)
	}

	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay down") }
	if err := m.SendResult(context.Background(), "ada@example.com", sampleResult(t)); err == nil {
		t.Fatalf("expected relay error")
	}
}
