package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/batchmates/batchmates/internal/store"
)

func newImportCmd() *cobra.Command {
	var profilesPath, mappingsPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load profiles and their interests into the database",
		Long: "Reads the intro JSON file and the interest mapping file and writes people,\n" +
			"interests and their links. Existing rows are kept, so re-running is safe.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				if profilesPath == "" {
					profilesPath = e.cfg.ProfilesFile
				}
				if mappingsPath == "" {
					mappingsPath = e.cfg.InterestMappingsFile
				}
				return runImport(ctx, e, profilesPath, mappingsPath)
			})
		},
	}

	cmd.Flags().StringVar(&profilesPath, "profiles", "", "Intro JSON file (default PROFILES_FILE)")
	cmd.Flags().StringVar(&mappingsPath, "mappings", "", "Interest mapping file (default INTEREST_MAPPINGS_FILE)")

	return cmd
}

func runImport(ctx context.Context, e *env, profilesPath, mappingsPath string) error {
	mapping, err := store.LoadInterestMappings(mappingsPath)
	if err != nil {
		return err
	}

	file := store.NewProfileFile(profilesPath, e.log)
	if err := file.Load(); err != nil {
		return err
	}

	profiles, err := file.Profiles(ctx, 0)
	if err != nil {
		return fmt.Errorf("reading profiles: %w", err)
	}

	stats, err := store.NewImportStore(store.Base{Pool: e.pool, Log: e.log}).ImportProfiles(ctx, profiles, mapping)
	if err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"profiles":             len(profiles),
		"mappings":             len(mapping),
		"people":               stats.People,
		"interests":            stats.Interests,
		"normalized_interests": stats.NormalizedInterests,
		"links":                stats.Links,
		"skipped":              stats.Skipped,
	}).Info("import complete")

	return nil
}
