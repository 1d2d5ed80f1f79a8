// Command growctl is the operator tool for the game service: it checks quiz
// bank files and inspects or resets stored player progress.
package main

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/AnimationBenoit/mygrowverse/internal/progress"
	"github.com/AnimationBenoit/mygrowverse/shared/envconfig"
)

// repoOpener returns the progress store selected by the command's flags.
type repoOpener func(ctx context.Context, cmd *cobra.Command) (progress.Repository, func() error, error)

func main() {
	if err := newRootCmd(openFirestore).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(open repoOpener) *cobra.Command {
	root := &cobra.Command{
		Use:          "growctl",
		Short:        "MyGrowVerse operator tool",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("project", envconfig.Get("GCP_PROJECT_ID", "mygrowverse-dev"), "GCP project holding the users collection")
	root.PersistentFlags().String("database", envconfig.Get("FIRESTORE_DATABASE", "(default)"), "Firestore database id")
	root.PersistentFlags().String("credentials", envconfig.Get("GCP_CREDENTIALS_FILE", ""), "service account key file (default credentials when empty)")

	root.AddCommand(newBankCmd())
	root.AddCommand(newProgressCmd(open))
	return root
}

func openFirestore(ctx context.Context, cmd *cobra.Command) (progress.Repository, func() error, error) {
	project, _ := cmd.Flags().GetString("project")
	database, _ := cmd.Flags().GetString("database")
	credentials, _ := cmd.Flags().GetString("credentials")

	var opts []option.ClientOption
	if credentials != "" {
		opts = append(opts, option.WithCredentialsFile(credentials))
	}
	client, err := firestore.NewClientWithDatabase(ctx, project, database, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("firestore client: %w", err)
	}
	return progress.NewFirestoreRepository(client), client.Close, nil
}
