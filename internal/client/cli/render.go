package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/keydesk/internal/client/client"
	"github.com/dmitrijs2005/keydesk/internal/client/guard"
	"github.com/dmitrijs2005/keydesk/internal/client/models"
	"github.com/dmitrijs2005/keydesk/internal/client/services"
	"github.com/dmitrijs2005/keydesk/internal/common"
	"github.com/dustin/go-humanize"
)

const keyPreviewLen = 20

func renderKeys(w io.Writer, keys []models.APIKey) {
	if len(keys) == 0 {
		fmt.Fprintln(w, "No API keys.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tKEY\tTIER\tSTATUS\tCREATED\tEXPIRES\tDESCRIPTION")
	for _, k := range keys {
		expires := "Never"
		if k.ExpiresAt != nil && !k.ExpiresAt.IsZero() {
			expires = k.ExpiresAt.Format("2006-01-02")
		}
		desc := "-"
		if k.Description != nil && *k.Description != "" {
			desc = *k.Description
		}
		created := "-"
		if !k.CreatedAt.IsZero() {
			created = k.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			k.ID, k.UserID, common.Truncate(k.Key, keyPreviewLen), k.Tier, k.Status(), created, expires, desc)
	}
	_ = tw.Flush()
}

func renderUsage(w io.Writer, rep services.UsageReport) {
	fmt.Fprintf(w, "Total requests: %s\n", formatCount(rep.Totals.Requests))
	fmt.Fprintf(w, "Total tokens:   %s\n", formatCount(rep.Totals.TotalTokens))
	if len(rep.Points) == 0 {
		fmt.Fprintln(w, "No usage recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\tREQUESTS\tTOKENS\tPROMPT\tCOMPLETION\t")
	for _, p := range rep.Points {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", p.Date,
			formatCount(p.Requests), formatCount(p.TotalTokens),
			formatCount(p.PromptTokens), formatCount(p.CompletionTokens))
	}
	_ = tw.Flush()
}

// formatCount groups digits in thousands: 1234567 -> "1,234,567".
func formatCount(n int64) string {
	return humanize.Comma(n)
}

// errorText turns an error from a command into the line shown to the user.
func errorText(err error) string {
	switch {
	case errors.Is(err, client.ErrNotAuthenticated):
		return "Not logged in. Use 'login' first."
	case errors.Is(err, client.ErrUnauthorized):
		return "Session expired. Please log in again."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable. Try again later."
	case errors.Is(err, guard.ErrBusy):
		return "Still working on the previous request."
	}
	return client.Message(err)
}
