package console

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/hisabi-admin/gateway"
	"github.com/jrsteele09/hisabi-admin/models"
	"github.com/jrsteele09/hisabi-admin/resource"
)

const (
	none       = "—"
	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02 15:04"
)

var medals = [resource.PodiumSize]string{"🥇", "🥈", "🥉"}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(tw *tabwriter.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

// pageState is what a page shows outside its populated state.
type pageState struct {
	noun string
	// back is the command that returns to the parent list of a detail page.
	back string
}

// show writes the loading, error and not found states of v and reports
// whether the caller should render v.Data.
func show[T any](w io.Writer, v resource.View[T], s pageState) bool {
	switch v.State {
	case resource.StateIdle:
		return false
	case resource.StateLoading:
		if !v.HasData {
			fmt.Fprintf(w, "Loading %s...\n", s.noun)
			return false
		}
	case resource.StateErrored:
		if v.NotFound {
			fmt.Fprintf(w, "%s not found.\n", capitalize(s.noun))
			if s.back != "" {
				fmt.Fprintf(w, "Return to list: hisabi-admin %s\n", s.back)
			}
			return false
		}
		fmt.Fprintf(w, "Failed to load %s: %s\n", s.noun, gateway.Message(v.Err, errText(v.Err)))
		return false
	}
	if v.Stale {
		fmt.Fprintln(w, "(refreshing)")
	}
	return true
}

func empty(w io.Writer, count int, noun string) bool {
	if count > 0 {
		return false
	}
	fmt.Fprintf(w, "No %s found.\n", noun)
	return true
}

// footer prints the 1-based pagination line of a paginated list.
func footer[T any](w io.Writer, p models.Page[T]) {
	if p.TotalPages == 0 {
		return
	}
	fmt.Fprintf(w, "\nPage %d of %d (%d total)", p.Page, p.TotalPages, p.Total)
	if p.Page > 1 {
		fmt.Fprintf(w, "  prev: -page %d", p.Page-1)
	}
	if p.HasNext() {
		fmt.Fprintf(w, "  next: -page %d", p.Page+1)
	}
	fmt.Fprintln(w)
}

func Stats(w io.Writer, v resource.View[models.Stats]) {
	if !show(w, v, pageState{noun: "dashboard"}) {
		return
	}
	s := v.Data
	tw := newTable(w)
	row(tw, "Total users", s.TotalUsers)
	row(tw, "Male", fmt.Sprintf("%d (%d%%)", s.MaleUsers, s.Percent(s.MaleUsers)))
	row(tw, "Female", fmt.Sprintf("%d (%d%%)", s.FemaleUsers, s.Percent(s.FemaleUsers)))
	row(tw, "New this month", s.NewUsersThisMonth)
	row(tw, "New last 7 days", s.NewUsersLast7Days)
	row(tw, "Groups", s.TotalGroups)
	row(tw, "Activity logs", s.TotalActivityLogs)
	row(tw, "Today's activity", s.TodayActivityCount)
	_ = tw.Flush()

	if len(s.ActivityBreakdown) > 0 {
		fmt.Fprintln(w, "\nActivity breakdown")
		tw = newTable(w)
		for _, k := range sortedKeys(s.ActivityBreakdown) {
			row(tw, " "+k, s.ActivityBreakdown[k])
		}
		_ = tw.Flush()
	}
	if len(s.StreakAverages) > 0 {
		fmt.Fprintln(w, "\nStreak averages")
		tw = newTable(w)
		row(tw, " TYPE", "CURRENT", "LONGEST")
		for _, k := range sortedKeys(s.StreakAverages) {
			a := s.StreakAverages[k]
			row(tw, " "+k, number(a.AvgCurrent), number(a.AvgLongest))
		}
		_ = tw.Flush()
	}
}

func Users(w io.Writer, v resource.View[models.Page[models.User]]) {
	if !show(w, v, pageState{noun: "users"}) || empty(w, len(v.Data.Items), "users") {
		return
	}
	tw := newTable(w)
	row(tw, "ID", "NAME", "EMAIL", "GENDER", "JOINED")
	for _, u := range v.Data.Items {
		row(tw, u.ID, orNone(u.Name), orNone(u.Email), orNone(u.Gender), date(u.CreatedAt))
	}
	_ = tw.Flush()
	footer(w, v.Data)
}

func User(w io.Writer, v resource.View[models.UserDetail]) {
	if !show(w, v, pageState{noun: "user", back: "users"}) {
		return
	}
	u := v.Data.User
	tw := newTable(w)
	row(tw, "ID", u.ID)
	row(tw, "Name", orNone(u.Name))
	row(tw, "Email", orNone(u.Email))
	row(tw, "Gender", orNone(u.Gender))
	if u.DOB != nil {
		row(tw, "Date of birth", *u.DOB)
	}
	row(tw, "Joined", date(u.CreatedAt))
	if u.Settings != nil {
		for _, k := range sortedKeys(u.Settings.Goals) {
			row(tw, "Goal "+k, string(u.Settings.Goals[k]))
		}
	}
	_ = tw.Flush()

	fmt.Fprintln(w, "\nStreaks")
	if !empty(w, len(v.Data.Streaks), "streaks") {
		tw = newTable(w)
		row(tw, " TYPE", "CURRENT", "LONGEST", "LAST ACTIVE")
		for _, s := range v.Data.Streaks {
			row(tw, " "+s.StreakType, s.CurrentStreak, s.LongestStreak, datePtr(s.LastActivityDate))
		}
		_ = tw.Flush()
	}

	fmt.Fprintln(w, "\nRecent activity")
	if !empty(w, len(v.Data.RecentActivity), "activity") {
		tw = newTable(w)
		for _, l := range v.Data.RecentActivity {
			row(tw, " "+clock(l.Date), l.ActivityType, details(l.Details))
		}
		_ = tw.Flush()
	}
}

func Groups(w io.Writer, v resource.View[models.Page[models.Group]]) {
	if !show(w, v, pageState{noun: "groups"}) || empty(w, len(v.Data.Items), "groups") {
		return
	}
	tw := newTable(w)
	row(tw, "ID", "NAME", "ADMIN", "MEMBERS", "CREATED")
	for _, g := range v.Data.Items {
		row(tw, g.ID, orNone(g.Name), g.AdminName(), len(g.Members), date(g.CreatedAt))
	}
	_ = tw.Flush()
	footer(w, v.Data)
}

func Group(w io.Writer, v resource.View[models.GroupDetail]) {
	if !show(w, v, pageState{noun: "group", back: "groups"}) {
		return
	}
	g := v.Data.Group
	tw := newTable(w)
	row(tw, "ID", g.ID)
	if g.GroupID != "" {
		row(tw, "Code", g.GroupID)
	}
	row(tw, "Name", orNone(g.Name))
	row(tw, "Description", orNone(g.Description))
	row(tw, "Admin", g.AdminName())
	row(tw, "Created", date(g.CreatedAt))
	_ = tw.Flush()

	fmt.Fprintf(w, "\nMembers (%d)\n", len(g.Members))
	if !empty(w, len(g.Members), "members") {
		tw = newTable(w)
		for i := range g.Members {
			m := &g.Members[i]
			row(tw, " "+m.DisplayName(), m.Contact())
		}
		_ = tw.Flush()
	}

	fmt.Fprintln(w, "\nDefault activities")
	if !empty(w, len(v.Data.DefaultActivities), "default activities") {
		tw = newTable(w)
		row(tw, " TITLE", "FREQUENCY", "POINTS")
		for _, a := range v.Data.DefaultActivities {
			row(tw, " "+a.Title, orNone(a.Frequency), a.Points)
		}
		_ = tw.Flush()
	}
}

func ActivityLogs(w io.Writer, v resource.View[models.Page[models.ActivityLog]]) {
	if !show(w, v, pageState{noun: "activity logs"}) || empty(w, len(v.Data.Items), "activity logs") {
		return
	}
	tw := newTable(w)
	row(tw, "DATE", "USER", "TYPE", "DETAILS")
	for _, l := range v.Data.Items {
		row(tw, clock(l.Date), l.User.DisplayName(), l.ActivityType, details(l.Details))
	}
	_ = tw.Flush()
	footer(w, v.Data)
}

func Duas(w io.Writer, v resource.View[models.Page[models.Dua]]) {
	if !show(w, v, pageState{noun: "duas"}) || empty(w, len(v.Data.Items), "duas") {
		return
	}
	tw := newTable(w)
	row(tw, "ID", "TITLE", "ARABIC", "ENGLISH")
	for _, d := range v.Data.Items {
		row(tw, d.ID, d.Title, truncate(d.ArabicText, 32), truncate(orNone(d.English), 40))
	}
	_ = tw.Flush()
	footer(w, v.Data)
}

func DhikrTypes(w io.Writer, v resource.View[models.Page[models.DhikrType]]) {
	if !show(w, v, pageState{noun: "dhikr types"}) || empty(w, len(v.Data.Items), "dhikr types") {
		return
	}
	tw := newTable(w)
	row(tw, "ID", "NAME", "ARABIC", "ENGLISH")
	for _, d := range v.Data.Items {
		row(tw, d.ID, d.Name, orNone(truncate(d.ArabicText, 32)), orNone(truncate(d.English, 40)))
	}
	_ = tw.Flush()
	footer(w, v.Data)
}

func FastingTypes(w io.Writer, v resource.View[models.Page[models.FastingType]]) {
	if !show(w, v, pageState{noun: "fasting types"}) || empty(w, len(v.Data.Items), "fasting types") {
		return
	}
	tw := newTable(w)
	row(tw, "ID", "NAME", "DISPLAY NAME", "DESCRIPTION")
	for _, f := range v.Data.Items {
		row(tw, f.ID, f.Name, f.DisplayName, orNone(truncate(f.Description, 48)))
	}
	_ = tw.Flush()
	footer(w, v.Data)
}

func QuranPortions(w io.Writer, v resource.View[models.Page[models.QuranPortion]]) {
	if !show(w, v, pageState{noun: "portions"}) || empty(w, len(v.Data.Items), "portions") {
		return
	}
	tw := newTable(w)
	row(tw, "ID", "ORDER", "TITLE", "SURAH", "AYAHS", "ACTIVE")
	for _, q := range v.Data.Items {
		surah := none
		if q.SurahNumber != nil {
			surah = strings.TrimSpace(fmt.Sprintf("%d %s", *q.SurahNumber, q.SurahName))
		}
		active := "no"
		if q.Active() {
			active = "yes"
		}
		row(tw, q.ID, q.Order, q.Title, surah, ayahRange(q.AyahFrom, q.AyahTo), active)
	}
	_ = tw.Flush()
	footer(w, v.Data)
}

// Leaderboard prints ranked rows with medals on the podium.
func Leaderboard(w io.Writer, metric models.Metric, v resource.View[[]resource.RankedRow]) {
	noun := string(metric) + " leaderboard"
	if !show(w, v, pageState{noun: noun}) || empty(w, len(v.Data), "entries") {
		return
	}
	tw := newTable(w)
	if metric == models.MetricStreaks {
		row(tw, "RANK", "USER", "EMAIL", strings.ToUpper(metric.Label()), "LONGEST")
	} else {
		row(tw, "RANK", "USER", "EMAIL", strings.ToUpper(metric.Label()))
	}
	for _, r := range v.Data {
		cols := []any{Rank(r), r.User.DisplayName(), r.User.Contact(), number(r.Score)}
		if metric == models.MetricStreaks {
			longest := none
			if r.Longest != nil {
				longest = number(*r.Longest)
			}
			cols = append(cols, longest)
		}
		row(tw, cols...)
	}
	_ = tw.Flush()
}

// Rank formats a leaderboard position, with a medal for the top three.
func Rank(r resource.RankedRow) string {
	if r.Podium() && r.Rank >= 1 {
		return medals[r.Rank-1] + " " + strconv.Itoa(r.Rank)
	}
	return "   " + strconv.Itoa(r.Rank)
}

func PrayerRecords(w io.Writer, v resource.View[models.Records[models.PrayerRecord]]) {
	if !show(w, v, pageState{noun: "prayer records"}) || empty(w, len(v.Data.Items), "records") {
		return
	}
	tw := newTable(w)
	row(tw, "DATE", "USER", "FARDH", "SUNNAH")
	for _, r := range v.Data.Items {
		row(tw, datePtr(r.Date), r.User.DisplayName(), r.FardhSummary(), r.SunnahCount())
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d records\n", v.Data.Total)
}

func QuranReadingRecords(w io.Writer, v resource.View[models.Records[models.QuranReadingRecord]]) {
	if !show(w, v, pageState{noun: "quran reading records"}) || empty(w, len(v.Data.Items), "records") {
		return
	}
	tw := newTable(w)
	row(tw, "DATE", "USER", "PAGES READ", "LAST PAGE")
	for _, r := range v.Data.Items {
		row(tw, datePtr(r.Date), r.User.DisplayName(), len(r.PagesRead), intPtr(r.LastReadPage))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d records\n", v.Data.Total)
}

func QuranMemorizationRecords(w io.Writer, v resource.View[models.Records[models.QuranMemorizationRecord]]) {
	if !show(w, v, pageState{noun: "quran memorization records"}) || empty(w, len(v.Data.Items), "records") {
		return
	}
	tw := newTable(w)
	row(tw, "USER", "AYAHS MEMORIZED", "NEXT AYAH")
	for _, r := range v.Data.Items {
		row(tw, r.User.DisplayName(), len(r.MemorizedAyahs), intPtr(r.NextAyahToMemorize))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d records\n", v.Data.Total)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return none
	}
	return s
}

func date(t time.Time) string {
	if t.IsZero() {
		return none
	}
	return t.Format(dateLayout)
}

func datePtr(t *time.Time) string {
	if t == nil {
		return none
	}
	return date(*t)
}

func clock(t time.Time) string {
	if t.IsZero() {
		return none
	}
	return t.Local().Format(timeLayout)
}

func intPtr(n *int) string {
	if n == nil {
		return none
	}
	return strconv.Itoa(*n)
}

func ayahRange(from, to *int) string {
	switch {
	case from == nil && to == nil:
		return none
	case to == nil || (from != nil && *from == *to):
		return intPtr(from)
	case from == nil:
		return intPtr(to)
	}
	return fmt.Sprintf("%d-%d", *from, *to)
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func details(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s == "{}" {
		return none
	}
	return truncate(s, 60)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
