package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/keydesk/internal/client/client"
	"github.com/dmitrijs2005/keydesk/internal/client/models"
	"github.com/dmitrijs2005/keydesk/internal/common"
)

func (a *AdminApp) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	cred, err := a.gate.Login(ctx, username, string(password))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", cred.Username)
	return a.Dashboard(ctx)
}

func (a *AdminApp) Logout(ctx context.Context) error {
	if err := a.gate.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *AdminApp) WhoAmI(ctx context.Context) error {
	cred, ok := a.gate.Credential()
	if !ok {
		return client.ErrNotAuthenticated
	}
	if cred.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Logged in as %s\n", cred.Username)
		return nil
	}
	fmt.Fprintf(a.out, "Logged in as %s (session expires %s)\n", cred.Username, cred.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

// Dashboard loads keys and usage together and prints both regions. A
// failure in one region is shown in place of it; the other still renders.
func (a *AdminApp) Dashboard(ctx context.Context) error {
	if !a.isLoggedIn() {
		return client.ErrNotAuthenticated
	}
	data := a.dashboard.Load(ctx)

	for _, err := range []error{data.KeysErr, data.UsageErr} {
		if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrNotAuthenticated) {
			return err
		}
	}

	fmt.Fprintln(a.out, "== API keys ==")
	if data.KeysErr != nil {
		fmt.Fprintln(a.out, errorText(data.KeysErr))
	} else {
		total, active := a.table.Counts()
		fmt.Fprintf(a.out, "Total keys: %d  Active keys: %d\n", total, active)
		renderKeys(a.out, a.table.Rows())
	}

	fmt.Fprintf(a.out, "== Usage (last %d days) ==\n", a.config.UsageDays)
	if data.UsageErr != nil {
		fmt.Fprintln(a.out, errorText(data.UsageErr))
	} else {
		renderUsage(a.out, data.Usage)
	}
	return nil
}

func (a *AdminApp) Keys(ctx context.Context) error {
	if err := a.table.Refresh(ctx); err != nil {
		return err
	}
	renderKeys(a.out, a.table.Rows())
	return nil
}

func (a *AdminApp) Create(ctx context.Context) error {
	if !a.isLoggedIn() {
		return client.ErrNotAuthenticated
	}

	userID, err := GetSimpleText(a.reader, "User ID", a.out)
	if err != nil {
		return err
	}

	tierIn, err := GetSimpleText(a.reader, "Tier (free, standard, premium) [standard]", a.out)
	if err != nil {
		return err
	}
	req := models.CreateKeyRequest{UserID: userID, Tier: models.TierStandard}
	if tierIn != "" {
		if req.Tier, err = models.ParseTier(tierIn); err != nil {
			return client.Invalid("tier", "Invalid tier. Must be free, standard, or premium")
		}
	}

	desc, err := GetSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	if desc != "" {
		req.Description = &desc
	}

	daysIn, err := GetSimpleText(a.reader, "Expires in days (empty for never)", a.out)
	if err != nil {
		return err
	}
	if daysIn != "" {
		days, err := strconv.Atoi(daysIn)
		if err != nil {
			return client.Invalid("expires_in_days", "Expiry must be a positive number of days")
		}
		req.ExpiresInDays = &days
	}

	k, err := a.table.Create(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "API Key created successfully!\n\nKey: %s\n\nPlease save this key, it won't be shown again.\n", k.Key)
	return nil
}

func (a *AdminApp) Toggle(ctx context.Context, id int64) error {
	if !a.table.Loaded() {
		if err := a.table.Refresh(ctx); err != nil {
			return err
		}
	}
	k, err := a.table.Toggle(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Key %d is now %s.\n", k.ID, k.Status())
	return nil
}

func (a *AdminApp) SetActive(ctx context.Context, id int64, active bool) error {
	k, err := a.table.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Key %d is now %s.\n", k.ID, k.Status())
	return nil
}

func (a *AdminApp) SetTier(ctx context.Context, id int64, tier string) error {
	t, err := models.ParseTier(tier)
	if err != nil {
		return client.Invalid("tier", "Invalid tier. Must be free, standard, or premium")
	}
	k, err := a.table.Update(ctx, id, models.KeyUpdate{Tier: &t})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Key %d tier is now %s.\n", k.ID, k.Tier)
	return nil
}

func (a *AdminApp) Describe(ctx context.Context, id int64, text string) error {
	if text == "" {
		var err error
		if text, err = GetSimpleText(a.reader, "Description", a.out); err != nil {
			return err
		}
	}
	k, err := a.table.Update(ctx, id, models.KeyUpdate{Description: &text})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Key %d description updated.\n", k.ID)
	return nil
}

// Delete asks for confirmation before sending the request.
func (a *AdminApp) Delete(ctx context.Context, id int64) error {
	if !a.isLoggedIn() {
		return client.ErrNotAuthenticated
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Are you sure you want to delete API key %d?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.table.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Key %d deleted.\n", id)
	return nil
}

func (a *AdminApp) Usage(ctx context.Context, days int, userID string) error {
	if days == 0 {
		days = a.config.UsageDays
	}
	rep, err := a.usage.Stats(ctx, models.UsageQuery{Days: days, UserID: userID})
	if err != nil {
		return err
	}
	if userID != "" {
		fmt.Fprintf(a.out, "Usage for %s, last %d days\n", userID, days)
	} else {
		fmt.Fprintf(a.out, "Usage, last %d days\n", days)
	}
	renderUsage(a.out, rep)
	return nil
}
