package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dazdaz/app-gcp-changelog/internal/source"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available service groups, services, and blogs.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Service groups:")
			for _, group := range source.Groups() {
				fmt.Fprintf(out, "  %s\n", group)
				for _, member := range source.GroupMembers(group) {
					fmt.Fprintf(out, "    %s\n", member)
				}
			}

			fmt.Fprintln(out, "\nBlogs (--blogs):")
			for _, blog := range source.Blogs() {
				fmt.Fprintf(out, "  %-15s %s\n", blog.ID, blog.PrimaryURL)
			}
			return nil
		},
	}
}
