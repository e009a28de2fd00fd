// ABOUTME: Tests for the hierarchy view extractors.
// ABOUTME: Covers the anchor-missing vs zero-rows distinction for every view.

package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customersHTML = `
<html><body>
<form action="/Find/SelectCustomers">
<select id="Customers" name="customerId">
  <option value="">-- vælg kunde --</option>
  <option value="42">Trifork</option>
  <option value="57">Danske Bank</option>
</select>
</form>
</body></html>`

func TestCustomers(t *testing.T) {
	t.Run("extracts options in document order", func(t *testing.T) {
		customers, err := Customers(customersHTML)
		require.NoError(t, err)
		require.Len(t, customers, 2)
		assert.Equal(t, Customer{ID: "42", Name: "Trifork"}, customers[0])
		assert.Equal(t, Customer{ID: "57", Name: "Danske Bank"}, customers[1])
	})

	t.Run("missing anchor is a parse error, not an empty result", func(t *testing.T) {
		customers, err := Customers(`<html><body><p>Not the expected page</p></body></html>`)
		assert.Nil(t, customers)

		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, ViewCustomers, perr.View)
	})

	t.Run("anchor with zero rows is an empty result, not an error", func(t *testing.T) {
		customers, err := Customers(`<select id="Customers"><option value="">-- vælg --</option></select>`)
		require.NoError(t, err)
		assert.Empty(t, customers)
	})
}

func TestProjects(t *testing.T) {
	html := `<select id="Projects">
	  <option value="">-- vælg projekt --</option>
	  <option value="101">Backend Service</option>
	</select>`

	t.Run("carries the query customer id", func(t *testing.T) {
		projects, err := Projects(html, "42")
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, Project{ID: "101", Name: "Backend Service", CustomerID: "42"}, projects[0])
	})

	t.Run("missing anchor", func(t *testing.T) {
		_, err := Projects(`<select id="Customers"></select>`, "42")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, ViewProjects, perr.View)
	})
}

func TestPhases(t *testing.T) {
	phases, err := Phases(`<select id="Phases"><option value="7">Implementation</option></select>`, "101")
	require.NoError(t, err)
	require.Len(t, phases, 1)
	assert.Equal(t, Phase{ID: "7", Name: "Implementation", ProjectID: "101"}, phases[0])
}

func TestActivities(t *testing.T) {
	html := `<select id="Activities">
	  <option value="">-- vælg aktivitet --</option>
	  <option value="11" data-billable="true">API</option>
	  <option value="12" data-billable="false">Sygdom</option>
	</select>`

	t.Run("extracts billable flag", func(t *testing.T) {
		activities, err := Activities(html, "7")
		require.NoError(t, err)
		require.Len(t, activities, 2)
		assert.Equal(t, Activity{ID: "11", Name: "API", PhaseID: "7", Billable: true}, activities[0])
		assert.Equal(t, Activity{ID: "12", Name: "Sygdom", PhaseID: "7", Billable: false}, activities[1])
	})

	t.Run("missing anchor", func(t *testing.T) {
		_, err := Activities(`<div></div>`, "7")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, ViewActivities, perr.View)
	})
}

func TestKinds(t *testing.T) {
	t.Run("extracts kinds", func(t *testing.T) {
		kinds, err := Kinds(`<select id="Kinds"><option value="3">Development</option></select>`)
		require.NoError(t, err)
		require.Len(t, kinds, 1)
		assert.Equal(t, Kind{ID: "3", Name: "Development"}, kinds[0])
	})

	t.Run("zero rows", func(t *testing.T) {
		kinds, err := Kinds(`<select id="Kinds"></select>`)
		require.NoError(t, err)
		assert.Empty(t, kinds)
	})
}

func TestParseErrorMessageNamesView(t *testing.T) {
	_, err := Kinds(`<html></html>`)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Error(), "kinds")
}
