// ABOUTME: User and preferences CLI commands
// ABOUTME: Manage operators, the active user, and stored preferences
package cli

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/redpdv/redpdv/state"
)

// AddUserCommand adds an operator.
func AddUserCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("add-user", flag.ExitOnError)
	name := fs.String("name", "", "User name (required)")
	email := fs.String("email", "", "Email address")
	role := fs.String("role", "", "Role (default: comercial)")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	u := app.Users.Add(map[string]interface{}{
		"name":  *name,
		"email": *email,
		"role":  *role,
	})
	fmt.Printf("✓ User created: %s (ID: %s)\n", u.Name, u.ID)
	return nil
}

// ListUsersCommand lists operators, marking the active one.
func ListUsersCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ExitOnError)
	_ = fs.Parse(args)

	current := app.CurrentUser()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE\tEMAIL\t")
	for _, u := range app.Users.List() {
		marker := ""
		if u.ID == current.ID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Role, u.Email, marker)
	}
	return w.Flush()
}

// UseUserCommand selects the active user.
func UseUserCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("use-user", flag.ExitOnError)
	id := fs.String("id", "", "User ID (required)")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}
	if !app.SetCurrentUser(*id) {
		return fmt.Errorf("user not found: %s", *id)
	}
	fmt.Printf("✓ Active user: %s\n", app.CurrentUser().Name)
	return nil
}

// LogoutCommand clears the active-user selection.
func LogoutCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	_ = fs.Parse(args)

	app.Logout()
	fmt.Println("✓ Logged out")
	return nil
}

// PreferencesCommand shows or updates stored preferences.
func PreferencesCommand(app *state.App, args []string) error {
	fs := flag.NewFlagSet("preferences", flag.ExitOnError)
	theme := fs.String("theme", "", "Theme (light, dark)")
	language := fs.String("language", "", "Language code")
	province := fs.String("province", "", "Default province")
	_ = fs.Parse(args)

	patch := map[string]interface{}{}
	setIfGiven(patch, "theme", *theme)
	setIfGiven(patch, "language", *language)
	setIfGiven(patch, "default_province", *province)

	p := app.Preferences.Get()
	if len(patch) > 0 {
		p = app.Preferences.Set(patch)
		fmt.Println("✓ Preferences updated")
	}

	fmt.Printf("Theme: %s\n", p.Theme)
	fmt.Printf("Language: %s\n", p.Language)
	fmt.Printf("Notifications: %v\n", p.NotificationsEnabled)
	if p.DefaultProvince != "" {
		fmt.Printf("Default province: %s\n", p.DefaultProvince)
	}
	return nil
}
