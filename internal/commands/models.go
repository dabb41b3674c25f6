package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/gatewaychat/internal/models"
)

var modelsCategoryFlag string

var modelsCmd = &cobra.Command{
	Use:   "models [query]",
	Short: "List the models in the catalog",
	Long: `List the models in the catalog, optionally filtered by a search query
(matched against id, name and category) or by category.

Ids outside the catalog can still be passed to -m; the gateway decides
whether it knows them.`,
	Example: `  gatewaychat models
  gatewaychat models claude
  gatewaychat models --category xAI`,
	Args: cobra.MaximumNArgs(1),
	RunE: runModels,
}

func init() {
	modelsCmd.Flags().StringVar(&modelsCategoryFlag, "category", "",
		"Only list this category ("+strings.Join(models.Categories(), ", ")+")")
}

func runModels(cmd *cobra.Command, args []string) error {
	list := models.AllModels()
	if len(args) > 0 {
		list = models.SearchModels(args[0])
	}
	if modelsCategoryFlag != "" {
		var filtered []models.AIModel
		for _, m := range list {
			if strings.EqualFold(m.Category, modelsCategoryFlag) {
				filtered = append(filtered, m)
			}
		}
		list = filtered
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No models match.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tVISION")
	_, _ = fmt.Fprintln(w, "--\t----\t--------\t------")
	for _, m := range list {
		vision := ""
		if m.SupportsVision {
			vision = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Category, vision)
	}
	return w.Flush()
}
