package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Browse batchmate profiles",
	}
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List profiles in file order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			profiles, err := apiClient.Profiles.List(cmd.Context(), limit)
			if err != nil {
				fatal("list profiles", err)
			}
			rows := make([][]string, len(profiles))
			names := make([]string, len(profiles))
			for i, p := range profiles {
				rows[i] = []string{p.Name, p.RoleAndInstitution, p.Location}
				names[i] = p.Name
			}
			output(profiles, []string{"NAME", "ROLE", "LOCATION"}, rows, names)
		},
	}
	list.Flags().IntVar(&limit, "limit", 0, "Maximum profiles to return (1-100)")
	cmd.AddCommand(list)
	return cmd
}

func newInterestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interests",
		Short: "Browse the interest catalogue",
	}
	var (
		query string
		limit int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List interests by popularity",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			interests, err := apiClient.Interests.List(cmd.Context(), query, limit)
			if err != nil {
				fatal("list interests", err)
			}
			rows := make([][]string, len(interests))
			names := make([]string, len(interests))
			for i, in := range interests {
				rows[i] = []string{in.Name, strconv.Itoa(in.PeopleCount)}
				names[i] = in.Name
			}
			output(interests, []string{"INTEREST", "PEOPLE"}, rows, names)
		},
	}
	list.Flags().StringVar(&query, "query", "", "Only interests containing this text")
	list.Flags().IntVar(&limit, "limit", 0, "Maximum interests to return (1-100)")
	cmd.AddCommand(list)
	return cmd
}

func newPersonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Look up a person",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "interests <name>",
		Short: "List a person's interests",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			interests, err := apiClient.Neighbors.InterestsForPerson(cmd.Context(), args[0])
			if err != nil {
				fatal("look up person", err)
			}
			outputList(interests, "INTEREST", interests)
		},
	})
	return cmd
}

func newInterestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interest",
		Short: "Look up an interest",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "people <name>",
		Short: "List everyone who shares an interest",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			people, err := apiClient.Neighbors.PeopleForInterest(cmd.Context(), args[0])
			if err != nil {
				fatal("look up interest", err)
			}
			outputList(people, "PERSON", people)
		},
	})
	return cmd
}
