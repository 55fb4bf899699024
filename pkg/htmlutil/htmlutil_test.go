package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t testing.TB, body string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestBrLines(t *testing.T) {
	doc := parse(t, `<div class="box">
		26-Mar-2026<br/>
		<span>13:00 - 14:30</span><br>
		Building&nbsp;301 <br><br>
	</div>`)

	lines := BrLines(doc.Find("div.box"))
	require.Equal(t, []string{"26-Mar-2026", "13:00 - 14:30", "Building 301"}, lines)
	require.Nil(t, BrLines(doc.Find("div.missing")))
}

func TestGetAnchors(t *testing.T) {
	doc := parse(t, `<nav>
		<a href="/student/timetable.xhtml">  My
			Timetable </a>
		<a href="#">Top</a>
		<a href="javascript:void(0)">Menu</a>
		<a href="https://elsewhere.test/x">External</a>
	</nav>`)

	base, err := url.Parse("https://portal.test/student/dashboard.xhtml")
	if err != nil {
		t.Fatal(err)
	}

	anchors := GetAnchors(base, doc.Find("a"))
	require.Len(t, anchors, 2)
	require.Equal(t, "My Timetable", anchors[0].Name)
	require.Equal(t, "https://portal.test/student/timetable.xhtml", anchors[0].Url.String())
	require.Equal(t, "https://elsewhere.test/x", anchors[1].Url.String())
}

func TestClassContains(t *testing.T) {
	doc := parse(t, `<div class="session Border-Success"></div><div style="border-color: red"></div>`)
	require.True(t, ClassContains(doc.Find("div.session"), "border-success"))
	require.False(t, ClassContains(doc.Find("div.session"), "danger"))
	require.True(t, ClassContains(doc.Find("div").Last(), "red"))
}
