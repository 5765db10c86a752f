package cmd

import (
	"fmt"
	"io"

	"github.com/griddle-dev/griddle/internal/recipe"
	"github.com/griddle-dev/griddle/internal/style"
)

const (
	listingMinNameWidth = 12
	listingMaxNameWidth = 40
	listingDescWidth    = 48
)

// printListing writes the non-hidden recipes in file order with their
// parameter signatures and descriptions. Pure function of the set: the
// same set always renders the same listing.
func printListing(w io.Writer, set *recipe.Set) {
	var visible []*recipe.Recipe
	nameWidth := listingMinNameWidth
	for _, r := range set.Recipes() {
		if r.Hidden() {
			continue
		}
		visible = append(visible, r)
		if n := len(r.Signature()); n > nameWidth {
			nameWidth = n
		}
	}

	if len(visible) == 0 {
		fmt.Fprintln(w, "No recipes defined.")
		return
	}
	if nameWidth > listingMaxNameWidth {
		nameWidth = listingMaxNameWidth
	}

	fmt.Fprintln(w, "Available recipes:")
	table := style.NewTable(
		style.Column{Name: "RECIPE", Width: nameWidth},
		style.Column{Name: "DESCRIPTION", Width: listingDescWidth, Style: style.Dim},
	).SetIndent("    ").SetHeaderSeparator(false)
	for _, r := range visible {
		desc := r.Doc
		if r.Name == set.Default {
			if desc != "" {
				desc += " "
			}
			desc += "[default]"
		}
		table.AddRow(r.Signature(), desc)
	}
	fmt.Fprint(w, table.Render())
}
