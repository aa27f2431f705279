package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/warmpath/scout-cli/internal/core/domain"
)

var (
	contactTitle       string
	contactCompany     string
	contactConnectedOn string
	contactsLimit      int
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage your first-degree contact book",
	Long: `The contact book holds your first-degree connections. Connector paths
are only mapped through contacts, so an empty book means no introduction
routes regardless of how many targets a run discovers.`,
	RunE: runContactsList,
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts, most recently added first",
	RunE:  runContactsList,
}

var contactsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a single contact",
	Args:  cobra.ExactArgs(1),
	RunE:  runContactsAdd,
}

var contactsImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import contacts from a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE:  runContactsImport,
}

func init() {
	contactsAddCmd.Flags().StringVar(&contactTitle, "title", "", "contact's current title")
	contactsAddCmd.Flags().StringVar(&contactCompany, "company", "", "contact's current company")
	contactsAddCmd.Flags().StringVar(&contactConnectedOn, "connected-on", "", "connection date, YYYY-MM-DD")
	contactsListCmd.Flags().IntVarP(&contactsLimit, "limit", "n", 50, "maximum contacts to list")
	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsAddCmd)
	contactsCmd.AddCommand(contactsImportCmd)
	rootCmd.AddCommand(contactsCmd)
}

func runContactsList(cmd *cobra.Command, _ []string) error {
	if contactStore == nil {
		return errors.New("contact store not configured")
	}

	contacts, err := contactStore.List(context.Background(), contactsLimit)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	if len(contacts) == 0 {
		cmd.Println("No contacts. Add some with 'warmscout contacts add' or 'warmscout contacts import'.")
		return nil
	}

	cmd.Printf("Contacts (%d):\n", len(contacts))
	for _, contact := range contacts {
		line := fmt.Sprintf("  %s", contact.Name)
		if contact.CurrentTitle != "" {
			line += ", " + contact.CurrentTitle
		}
		if contact.CurrentCompany != "" {
			line += " @ " + contact.CurrentCompany
		}
		cmd.Println(line)
	}
	return nil
}

func runContactsAdd(cmd *cobra.Command, args []string) error {
	if contactStore == nil {
		return errors.New("contact store not configured")
	}

	contact := domain.Contact{
		ID:             uuid.New().String(),
		Name:           args[0],
		CurrentTitle:   contactTitle,
		CurrentCompany: contactCompany,
		CreatedAt:      time.Now(),
	}

	if contactConnectedOn != "" {
		connected, err := time.Parse("2006-01-02", contactConnectedOn)
		if err != nil {
			return fmt.Errorf("invalid --connected-on date: %w", err)
		}
		contact.ConnectedOn = &connected
	}

	if err := contactStore.Save(context.Background(), contact); err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}

	cmd.Printf("Added contact: %s\n", contact.Name)
	return nil
}

// contactFileEntry is the on-disk shape of one imported contact.
type contactFileEntry struct {
	Name           string `json:"name"`
	CurrentTitle   string `json:"current_title"`
	CurrentCompany string `json:"current_company"`
	ConnectedOn    string `json:"connected_on"`
}

func runContactsImport(cmd *cobra.Command, args []string) error {
	if contactStore == nil {
		return errors.New("contact store not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading contacts file: %w", err)
	}

	var entries []contactFileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing contacts file: %w", err)
	}

	ctx := context.Background()
	imported := 0
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		contact := domain.Contact{
			ID:             uuid.New().String(),
			Name:           entry.Name,
			CurrentTitle:   entry.CurrentTitle,
			CurrentCompany: entry.CurrentCompany,
			CreatedAt:      time.Now(),
		}
		if entry.ConnectedOn != "" {
			if connected, err := time.Parse("2006-01-02", entry.ConnectedOn); err == nil {
				contact.ConnectedOn = &connected
			}
		}
		if err := contactStore.Save(ctx, contact); err != nil {
			return fmt.Errorf("failed to save contact %q: %w", entry.Name, err)
		}
		imported++
	}

	cmd.Printf("Imported %d contacts.\n", imported)
	return nil
}
