package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dfodeker/corekit/snowflake"
	"github.com/dfodeker/corekit/token"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "corekit",
		Short:        "Snowflake ids and signed tokens",
		SilenceUsage: true,
	}
	root.AddCommand(newIDCmd(), newTokenCmd())
	return root
}

func newIDCmd() *cobra.Command {
	idCmd := &cobra.Command{Use: "id", Short: "Generate and decode snowflake ids"}

	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Print new ids, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			worker, _ := cmd.Flags().GetInt64("worker")
			if count < 1 {
				return fmt.Errorf("count must be at least 1, got %d", count)
			}

			cfg, err := generatorConfig(cmd, worker)
			if err != nil {
				return err
			}
			gen, err := snowflake.New(cfg)
			if err != nil {
				return err
			}
			ids, err := gen.GenerateBatch(count)
			if err != nil {
				return err
			}
			log.Debug().Int("count", len(ids)).Int64("worker_id", worker).Msg("generated ids")

			out := cmd.OutOrStdout()
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
	newCmd.Flags().IntP("count", "n", 1, "number of ids to generate")
	newCmd.Flags().Int64("worker", snowflake.DefaultWorkerID, "worker id (0-1023)")
	newCmd.Flags().Int64("epoch", snowflake.DefaultEpoch, "custom epoch in unix milliseconds")

	parseCmd := &cobra.Command{
		Use:   "parse <id>",
		Short: "Decode an id into its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := snowflake.ParseString(args[0])
			if err != nil {
				return err
			}
			epoch, _ := cmd.Flags().GetInt64("epoch")
			asJSON, _ := cmd.Flags().GetBool("json")

			d := snowflake.Decode(id)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					snowflake.DecodedID
					GeneratedAt string `json:"generated_at"`
				}{d, d.GenerationTimeString(epoch)})
			}
			fmt.Fprintf(out, "id:           %d\n", d.ID)
			fmt.Fprintf(out, "timestamp:    %d\n", d.Timestamp)
			fmt.Fprintf(out, "worker_id:    %d\n", d.WorkerID)
			fmt.Fprintf(out, "sequence:     %d\n", d.Sequence)
			fmt.Fprintf(out, "generated_at: %s\n", d.GenerationTimeString(epoch))
			return nil
		},
	}
	parseCmd.Flags().Int64("epoch", snowflake.DefaultEpoch, "epoch the id was generated against")
	parseCmd.Flags().Bool("json", false, "print as JSON")

	idCmd.AddCommand(newCmd, parseCmd)
	return idCmd
}

func generatorConfig(cmd *cobra.Command, worker int64) (snowflake.Config, error) {
	if !cmd.Flags().Changed("epoch") {
		return snowflake.NewConfig(worker)
	}
	epoch, _ := cmd.Flags().GetInt64("epoch")
	return snowflake.NewConfigWithEpoch(worker, epoch)
}

func newTokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{Use: "token", Short: "Issue and verify signed tokens"}
	defaults := token.DefaultConfig()

	issueCmd := &cobra.Command{
		Use:   "issue <json-payload>",
		Short: "Sign a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			days, _ := cmd.Flags().GetInt("days")

			payload := strings.TrimSpace(args[0])
			if !json.Valid([]byte(payload)) {
				return errors.New("payload must be valid JSON")
			}
			signed, err := token.NewManager(token.NewConfig(secret, days)).Generate(json.RawMessage(payload))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	issueCmd.Flags().String("secret", defaults.Secret, "HMAC signing secret")
	issueCmd.Flags().Int("days", defaults.ExpireDays, "days until the token expires")

	verifyCmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Check a token and print its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")

			var payload json.RawMessage
			if err := token.NewManager(token.NewConfig(secret, defaults.ExpireDays)).Verify(args[0], &payload); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}
	verifyCmd.Flags().String("secret", defaults.Secret, "HMAC signing secret")

	tokenCmd.AddCommand(issueCmd, verifyCmd)
	return tokenCmd
}
