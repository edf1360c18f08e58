package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/medlab/labadmin/internal/domain/unit"
	"github.com/medlab/labadmin/pkg/criteria"
)

func listFlagsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "list"}
	cmd.Flags().StringArray("filter", nil, "")
	cmd.Flags().String("sort", "", "")
	cmd.Flags().Bool("desc", false, "")
	cmd.Flags().Int("page", 1, "")
	cmd.Flags().Int("page-size", 0, "")
	return cmd
}

func TestCriteriaFromFlags(t *testing.T) {
	cmd := listFlagsCmd()
	if err := cmd.Flags().Parse([]string{
		"--filter", "name=cardio",
		"--filter", "address=hanoi",
		"--sort", "name", "--desc",
		"--page", "2", "--page-size", "50",
	}); err != nil {
		t.Fatal(err)
	}

	crit, err := criteriaFromFlags(cmd, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(crit.Filters) != 2 || crit.Filters[0] != (criteria.Filter{Field: "name", Value: "cardio"}) {
		t.Errorf("filters: %+v", crit.Filters)
	}
	if crit.SortBy.Field != "name" || crit.SortBy.Ascending {
		t.Errorf("sort: %+v", crit.SortBy)
	}
	if crit.PageIndex != 2 || crit.PageSize != 50 {
		t.Errorf("paging: index=%d size=%d", crit.PageIndex, crit.PageSize)
	}
}

func TestCriteriaFromFlagsDefaults(t *testing.T) {
	cmd := listFlagsCmd()
	if err := cmd.Flags().Parse(nil); err != nil {
		t.Fatal(err)
	}
	crit, err := criteriaFromFlags(cmd, 50)
	if err != nil {
		t.Fatal(err)
	}
	if crit.PageIndex != 1 || crit.PageSize != 50 || len(crit.Filters) != 0 {
		t.Errorf("defaults: %+v", crit)
	}
}

func TestCriteriaFromFlagsBadFilter(t *testing.T) {
	cmd := listFlagsCmd()
	if err := cmd.Flags().Parse([]string{"--filter", "no-equals-sign"}); err != nil {
		t.Fatal(err)
	}
	if _, err := criteriaFromFlags(cmd, 30); err == nil {
		t.Error("expected error for malformed filter")
	}
}

func TestReadData(t *testing.T) {
	cmd := &cobra.Command{Use: "create"}
	cmd.Flags().String("data", "", "")

	var fromFlag unit.Unit
	cmd.Flags().Set("data", `{"name":"Cardiology"}`)
	if err := readData(cmd, &fromFlag); err != nil {
		t.Fatal(err)
	}
	if fromFlag.Name != "Cardiology" {
		t.Errorf("from flag: %+v", fromFlag)
	}

	cmd2 := &cobra.Command{Use: "create"}
	cmd2.Flags().String("data", "", "")
	cmd2.SetIn(bytes.NewBufferString(`{"name":"Oncology"}`))
	var fromStdin unit.Unit
	if err := readData(cmd2, &fromStdin); err != nil {
		t.Fatal(err)
	}
	if fromStdin.Name != "Oncology" {
		t.Errorf("from stdin: %+v", fromStdin)
	}

	cmd3 := &cobra.Command{Use: "create"}
	cmd3.Flags().String("data", "", "")
	cmd3.SetIn(bytes.NewBufferString(""))
	if err := readData(cmd3, &fromStdin); err == nil {
		t.Error("expected error for empty input")
	}
}
