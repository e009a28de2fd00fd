// ABOUTME: Extraction functions for the Tidsreg hierarchy selection views.
// ABOUTME: Each view is anchored on its select element; absence of the anchor is a ParseError.

package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// View names used in ParseError. They match the upstream page each function
// consumes.
const (
	ViewCustomers  = "customers"
	ViewProjects   = "projects"
	ViewPhases     = "phases"
	ViewActivities = "activities"
	ViewKinds      = "kinds"
	ViewHours      = "hours"
)

// ParseError reports that a view's markup did not have the structure the
// extractor depends on. It is deliberately distinct from an empty result:
// a missing anchor means the upstream markup changed, zero rows means the
// upstream dataset is empty.
type ParseError struct {
	View   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s view: %s", e.View, e.Reason)
}

// parseDoc wraps goquery document construction with a view-tagged error.
func parseDoc(view, html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{View: view, Reason: fmt.Sprintf("invalid document: %v", err)}
	}
	return doc, nil
}

// selectOptions finds the anchor select element for a view and returns its
// non-placeholder options as (id, name) pairs in document order.
func selectOptions(view, html, anchor string) ([][2]string, error) {
	doc, err := parseDoc(view, html)
	if err != nil {
		return nil, err
	}

	sel := doc.Find("select#" + anchor)
	if sel.Length() == 0 {
		return nil, &ParseError{View: view, Reason: fmt.Sprintf("select#%s anchor not found", anchor)}
	}

	var pairs [][2]string
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		id, ok := opt.Attr("value")
		if !ok || id == "" {
			// Placeholder options ("-- vælg --") carry no value.
			return
		}
		pairs = append(pairs, [2]string{id, strings.TrimSpace(opt.Text())})
	})

	return pairs, nil
}

// Customers extracts the customer selection view.
func Customers(html string) ([]Customer, error) {
	pairs, err := selectOptions(ViewCustomers, html, "Customers")
	if err != nil {
		return nil, err
	}

	customers := make([]Customer, 0, len(pairs))
	for _, p := range pairs {
		customers = append(customers, Customer{ID: p[0], Name: p[1]})
	}
	return customers, nil
}

// Projects extracts the project selection view. The customer id is not
// present in the markup; the caller supplies the id it queried with.
func Projects(html, customerID string) ([]Project, error) {
	pairs, err := selectOptions(ViewProjects, html, "Projects")
	if err != nil {
		return nil, err
	}

	projects := make([]Project, 0, len(pairs))
	for _, p := range pairs {
		projects = append(projects, Project{ID: p[0], Name: p[1], CustomerID: customerID})
	}
	return projects, nil
}

// Phases extracts the phase selection view.
func Phases(html, projectID string) ([]Phase, error) {
	pairs, err := selectOptions(ViewPhases, html, "Phases")
	if err != nil {
		return nil, err
	}

	phases := make([]Phase, 0, len(pairs))
	for _, p := range pairs {
		phases = append(phases, Phase{ID: p[0], Name: p[1], ProjectID: projectID})
	}
	return phases, nil
}

// Activities extracts the activity selection view. Billability is carried on
// each option as a data-billable attribute.
func Activities(html, phaseID string) ([]Activity, error) {
	doc, err := parseDoc(ViewActivities, html)
	if err != nil {
		return nil, err
	}

	sel := doc.Find("select#Activities")
	if sel.Length() == 0 {
		return nil, &ParseError{View: ViewActivities, Reason: "select#Activities anchor not found"}
	}

	activities := make([]Activity, 0)
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		id, ok := opt.Attr("value")
		if !ok || id == "" {
			return
		}
		activities = append(activities, Activity{
			ID:       id,
			Name:     strings.TrimSpace(opt.Text()),
			PhaseID:  phaseID,
			Billable: boolAttr(opt, "data-billable"),
		})
	})

	return activities, nil
}

// Kinds extracts the kind selection view.
func Kinds(html string) ([]Kind, error) {
	pairs, err := selectOptions(ViewKinds, html, "Kinds")
	if err != nil {
		return nil, err
	}

	kinds := make([]Kind, 0, len(pairs))
	for _, p := range pairs {
		kinds = append(kinds, Kind{ID: p[0], Name: p[1]})
	}
	return kinds, nil
}

// boolAttr reads a truthy data attribute ("true" or "1").
func boolAttr(s *goquery.Selection, name string) bool {
	v, _ := s.Attr(name)
	return v == "true" || v == "1"
}
