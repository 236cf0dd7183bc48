package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/channelops/taskhealth/internal/monitor"
)

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the monitored task categories and their policy standing",
		RunE:  runCategories,
	}
}

func runCategories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	categories, err := loadCategories(cfg.Categories.File)
	if err != nil {
		return err
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	width := 0
	for _, c := range categories {
		if len(c.Name) > width {
			width = len(c.Name)
		}
	}

	coreCritical := toSet(cfg.Policy.CoreCritical)
	elevated := toSet(cfg.Policy.Elevated)

	for _, c := range categories {
		var marks []string
		if coreCritical[c.Name] {
			marks = append(marks, "core-critical")
		}
		if elevated[c.Name] {
			marks = append(marks, "elevated")
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = " [" + strings.Join(marks, ", ") + "]"
		}
		fmt.Printf("%-*s  %s%s\n", width, c.Name, c.Description, suffix)
	}
	return nil
}

func loadCategories(file string) ([]monitor.Category, error) {
	if file == "" {
		return monitor.DefaultCategories()
	}
	return monitor.LoadCategoriesFromFile(file)
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
