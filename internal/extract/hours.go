// ABOUTME: Extraction for the week timesheet view and comma-decimal hour values.
// ABOUTME: Returns the entire week's registrations; day filtering belongs to the caller.

package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Week extracts the week timesheet view. The upstream Hours page always
// renders a full week; filtering to a single day is the caller's job so that
// adjacent-day queries can reuse one fetch.
//
// Anchors: #WeekHeader (week/year/start/end data attributes) and
// table#Registrations with tr.registration rows.
func Week(html string) (*WeekData, error) {
	doc, err := parseDoc(ViewHours, html)
	if err != nil {
		return nil, err
	}

	header := doc.Find("#WeekHeader")
	if header.Length() == 0 {
		return nil, &ParseError{View: ViewHours, Reason: "#WeekHeader anchor not found"}
	}

	table := doc.Find("table#Registrations")
	if table.Length() == 0 {
		return nil, &ParseError{View: ViewHours, Reason: "table#Registrations anchor not found"}
	}

	info, err := weekInfo(header)
	if err != nil {
		return nil, err
	}

	regs := make([]Registration, 0)
	var rowErr error
	table.Find("tr.registration").EachWithBreak(func(i int, row *goquery.Selection) bool {
		reg, err := registrationRow(row)
		if err != nil {
			rowErr = &ParseError{View: ViewHours, Reason: fmt.Sprintf("row %d: %v", i, err)}
			return false
		}
		regs = append(regs, reg)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return &WeekData{Info: *info, Registrations: regs}, nil
}

func weekInfo(header *goquery.Selection) (*WeekInfo, error) {
	weekAttr, _ := header.Attr("data-week")
	yearAttr, _ := header.Attr("data-year")

	week, err := strconv.Atoi(weekAttr)
	if err != nil {
		return nil, &ParseError{View: ViewHours, Reason: fmt.Sprintf("invalid data-week %q", weekAttr)}
	}
	year, err := strconv.Atoi(yearAttr)
	if err != nil {
		return nil, &ParseError{View: ViewHours, Reason: fmt.Sprintf("invalid data-year %q", yearAttr)}
	}

	start, _ := header.Attr("data-start")
	end, _ := header.Attr("data-end")

	return &WeekInfo{Week: week, Year: year, Start: start, End: end}, nil
}

func registrationRow(row *goquery.Selection) (Registration, error) {
	date, ok := row.Attr("data-date")
	if !ok || date == "" {
		return Registration{}, fmt.Errorf("missing data-date")
	}

	display := strings.TrimSpace(row.Find("td.hours").Text())
	hours, err := ParseHours(display)
	if err != nil {
		return Registration{}, fmt.Errorf("hours cell: %w", err)
	}

	return Registration{
		Date:         date,
		CustomerName: strings.TrimSpace(row.Find("td.customer").Text()),
		ProjectName:  strings.TrimSpace(row.Find("td.project").Text()),
		ActivityName: strings.TrimSpace(row.Find("td.activity").Text()),
		KindName:     strings.TrimSpace(row.Find("td.kind").Text()),
		Hours:        hours,
		HoursDisplay: display,
		Billable:     boolAttr(row, "data-billable"),
	}, nil
}

// ParseHours normalizes a comma-decimal hour string ("4,50") to a float64.
func ParseHours(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty hour value")
	}

	normalized := strings.ReplaceAll(trimmed, ",", ".")
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hour value %q", s)
	}
	return v, nil
}

// FormatHours renders a float64 back in the upstream display locale ("5,50").
func FormatHours(v float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(v, 'f', 2, 64), ".", ",")
}
