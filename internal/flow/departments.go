package flow

import (
	"fmt"
	"strconv"
	"strings"
)

// Department is one district service department.
type Department struct {
	Key   string
	Label string
	Icon  string
}

// Departments lists the fixed department set. "Other" is only offered where
// a flow explicitly allows it (status checks); complaints and department
// info use the first five.
var Departments = []Department{
	{Key: "ardhi", Label: "Ardhi (Land)", Icon: "🏡"},
	{Key: "electricity", Label: "Electricity", Icon: "⚡"},
	{Key: "health", Label: "Health", Icon: "🏥"},
	{Key: "maji", Label: "Maji (Water)", Icon: "💧"},
	{Key: "business", Label: "Business & Trade", Icon: "📋"},
	{Key: "other", Label: "Other", Icon: "📌"},
}

var digitEmojis = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣"}

// deptMenu renders the numbered department list.
func deptMenu(withOther bool) string {
	items := Departments
	if !withOther {
		items = Departments[:len(Departments)-1]
	}
	var b strings.Builder
	for i, d := range items {
		fmt.Fprintf(&b, "%s %s %s\n", digitEmojis[i], d.Label, d.Icon)
	}
	return strings.TrimRight(b.String(), "\n")
}

// deptByNumber resolves a typed menu number to a department.
func deptByNumber(input string, withOther bool) (Department, bool) {
	items := Departments
	if !withOther {
		items = Departments[:len(Departments)-1]
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(items) {
		return Department{}, false
	}
	return items[n-1], true
}

// deptLabel returns the display label for a department key, falling back to
// the key itself for unknown values carried in old sessions.
func deptLabel(key string) string {
	for _, d := range Departments {
		if d.Key == key {
			return d.Label
		}
	}
	return key
}
