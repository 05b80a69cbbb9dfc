// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"context"
	"strings"
	"testing"
)

func TestBuildMessage_Plain(t *testing.T) {
	msg, err := buildMessage("reports@ballotbox.dev", "admin@example.com", "Voting v1 report", "body text", nil, "")
	if err != nil {
		t.Fatal(err)
	}

	s := string(msg)
	for _, want := range []string{
		"From: reports@ballotbox.dev",
		"To: admin@example.com",
		"Subject: Voting v1 report",
		"Content-Type: text/plain",
		"body text",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("message missing %q", want)
		}
	}
	if strings.Contains(s, "multipart") {
		t.Error("plain message should not be multipart")
	}
}

func TestBuildMessage_Attachment(t *testing.T) {
	msg, err := buildMessage("reports@ballotbox.dev", "admin@example.com", "subject", "body",
		[]byte("Last name,Votes\n"), "voting_v1_members.csv")
	if err != nil {
		t.Fatal(err)
	}

	s := string(msg)
	for _, want := range []string{
		"multipart/mixed",
		`attachment; filename="voting_v1_members.csv"`,
		"Content-Transfer-Encoding: base64",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestLogMailer(t *testing.T) {
	// Log mailer never fails
	if err := (Log{}).Send(context.Background(), "a@b.c", "s", "b", nil, ""); err != nil {
		t.Errorf("Log.Send returned error: %v", err)
	}
}
