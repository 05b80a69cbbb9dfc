// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/danielhkuo/ballotbox/models"
)

// Report is a rendered voting report ready for delivery. Attachment is nil
// when the voting has no members; AttachmentName is only set alongside it.
type Report struct {
	Subject        string
	Body           string
	Attachment     []byte
	AttachmentName string
}

// Build renders a snapshot report for a voting. Members maps character IDs
// to last names for the attachment rows; votes must already be ordered by
// descending amount (the ledger read guarantees this).
func Build(v models.Voting, votes []models.VoteRecord, members map[string]string, open bool) (Report, error) {
	rep := Report{
		Subject: fmt.Sprintf("Voting %s report", v.ID),
	}

	maxCondition := "no"
	if v.MaxVotes != nil {
		maxCondition = strconv.Itoa(*v.MaxVotes)
	}

	attachmentStr := "Voting has no members."
	if len(votes) > 0 {
		data, err := memberTable(votes, members)
		if err != nil {
			return Report{}, err
		}
		rep.Attachment = data
		rep.AttachmentName = fmt.Sprintf("voting_%s_members.csv", v.ID)
		attachmentStr = "See information about members in attachment."
	}

	rep.Body = fmt.Sprintf(
		"Hi! This is your voting report:\n\n"+
			"ID:                %s\n"+
			"Title:             %s\n"+
			"Start date:        %s\n"+
			"End date:          %s\n"+
			"Max condition:     %s\n"+
			"Is active:         %t\n\n"+
			"%s",
		v.ID,
		v.Title,
		v.StartDate.Format(models.DateFormat),
		v.EndDate.Format(models.DateFormat),
		maxCondition,
		open,
		attachmentStr,
	)

	return rep, nil
}

// memberTable renders the (last name, votes) table as CSV bytes.
func memberTable(votes []models.VoteRecord, members map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Last name", "Votes"}); err != nil {
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}
	for _, vr := range votes {
		name, ok := members[vr.CharacterID]
		if !ok {
			name = vr.CharacterID
		}
		if err := w.Write([]string{name, strconv.Itoa(vr.Amount)}); err != nil {
			return nil, fmt.Errorf("failed to write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to render report table: %w", err)
	}

	return buf.Bytes(), nil
}
