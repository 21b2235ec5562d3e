package crawler

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/wato-stats/internal/domain/wager"
)

const (
	closedListMarker = "종료"
	closedPostMarker = "종료됨"
	maxSides         = 2
)

var (
	postIDRegex   = regexp.MustCompile(`/(\d+)`)
	deadlineRegex = regexp.MustCompile(`(?s)마감 시각:\s*(\d{4})년\s*(\d{2})월\s*(\d{2})일.*?(\d{2}):(\d{2}):(\d{2})`)

	amountSuffixes = []string{"포인트", "원", "pt", "P", "p"}
)

// ParseListPage returns the ids of closed betting posts on one board list
// page, in page order. Pinned notice rows are ignored.
func ParseListPage(r io.Reader) ([]int64, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse list page: %w", err)
	}

	ids := make([]int64, 0, 20)
	seen := make(map[int64]struct{}, 20)
	doc.Find("table.bd_list tbody tr").Each(func(_ int, row *goquery.Selection) {
		if row.HasClass("notice") {
			return
		}
		link := row.Find("td.tit a[href]").First()
		category := row.Find("span.cat").First()
		if link.Length() == 0 || category.Length() == 0 {
			return
		}
		if !strings.Contains(strings.TrimSpace(category.Text()), closedListMarker) {
			return
		}

		href, _ := link.Attr("href")
		id, ok := postIDFromHref(href)
		if !ok {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	})

	return ids, nil
}

// ParsePostPage extracts the betting block of a post page. The returned
// ParsedPost carries no board or post id; callers fill those in.
func ParsePostPage(r io.Reader, loc *time.Location) (wager.ParsedPost, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return wager.ParsedPost{}, fmt.Errorf("parse post page: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	var parsed wager.ParsedPost
	block := doc.Find("div.ub_bet_start").First()
	if block.Length() == 0 {
		return parsed, nil
	}
	parsed.IsBetting = true

	blockText := block.Text()
	parsed.IsClosed = strings.Contains(blockText, closedPostMarker)
	// Only the betting block is trusted; the same label in a comment or the
	// post body must not become the deadline.
	parsed.Deadline = parseDeadline(blockText, loc)

	doc.Find("div.wato_view div.item").EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= maxSides {
			return false
		}
		side := wager.Side(i)
		item.Find("div.apply_list tbody tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() < 4 {
				return
			}
			row, ok := normalizeRow(side, cells.Eq(0).Text(), cells.Eq(1).Text(), cells.Eq(2).Text())
			if !ok {
				parsed.SkippedRows++
				return
			}
			parsed.Rows = append(parsed.Rows, row)
		})
		return true
	})

	return parsed, nil
}

// NormalizeAmount parses a displayed point amount such as "1,000" or
// "1,000 P".
func NormalizeAmount(raw string) (int64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	for _, suffix := range amountSuffixes {
		if strings.HasSuffix(cleaned, suffix) {
			cleaned = strings.TrimSuffix(cleaned, suffix)
			break
		}
	}
	if cleaned == "" {
		return 0, fmt.Errorf("amount is empty")
	}

	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return value, nil
}

func normalizeRow(side wager.Side, nicknameText, stakeText, payoutText string) (wager.Row, bool) {
	nickname := strings.TrimSpace(nicknameText)
	if nickname == "" {
		return wager.Row{}, false
	}
	stake, err := NormalizeAmount(stakeText)
	if err != nil || stake <= 0 {
		return wager.Row{}, false
	}
	payout, err := NormalizeAmount(payoutText)
	if err != nil || payout < 0 {
		return wager.Row{}, false
	}

	return wager.Row{
		Nickname: nickname,
		Side:     side,
		Stake:    stake,
		Payout:   payout,
	}, true
}

func postIDFromHref(href string) (int64, bool) {
	match := postIDRegex.FindStringSubmatch(href)
	if len(match) < 2 {
		return 0, false
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseDeadline(text string, loc *time.Location) *time.Time {
	match := deadlineRegex.FindStringSubmatch(text)
	if len(match) != 7 {
		return nil
	}

	parts := make([]int, 6)
	for i := range parts {
		v, err := strconv.Atoi(match[i+1])
		if err != nil {
			return nil
		}
		parts[i] = v
	}
	year, month, day, hour, minute, second := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]
	if hour > 23 || minute > 59 || second > 59 {
		return nil
	}

	value := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	if value.Year() != year || int(value.Month()) != month || value.Day() != day {
		return nil
	}
	return &value
}
