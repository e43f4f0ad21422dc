package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/phonetrack/internal/app"
	"github.com/polkiloo/phonetrack/internal/domain/model"
)

func printRecords(w io.Writer, records []model.PhoneNumber, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tNAME\tREDEEM\tSPENT\tPOINTS\tLAST USED\tLAST TRIED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%d\t%s\t%s\n",
			r.ID, r.Number, r.DisplayName(), strconv.FormatBool(r.HasRedeemValue),
			r.AmountSpent, r.NumberOfPoints, formatTime(r.LastUsed), formatTime(r.LastTried))
	}
	return tw.Flush()
}

func printRecord(w io.Writer, r model.PhoneNumber, asJSON bool) error {
	return printRecords(w, []model.PhoneNumber{r}, asJSON)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// resolve accepts either a record id or a phone number.
func resolve(ctx context.Context, tracker *app.Tracker, ref string) (model.PhoneNumber, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return tracker.Get(ctx, id)
	}
	rec, err := tracker.FindByNumber(ctx, ref)
	if err != nil {
		return model.PhoneNumber{}, fmt.Errorf("no record for %q: %w", ref, err)
	}
	return rec, nil
}
