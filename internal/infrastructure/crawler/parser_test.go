package crawler

import (
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/wato-stats/internal/domain/wager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = time.FixedZone("KST", 9*60*60)

const listPageHTML = `<html><body>
<table class="bd_list"><tbody>
  <tr class="notice"><td class="tit"><a href="/board/pan_setkacup/999">공지</a><span class="cat">종료</span></td></tr>
  <tr><td class="tit"><a href="/board/pan_setkacup/1001">진행 중 경기</a><span class="cat">진행중</span></td></tr>
  <tr><td class="tit"><a href="/board/pan_setkacup/1002?page=1">끝난 경기</a><span class="cat">종료</span></td></tr>
  <tr><td class="tit"><a href="/board/pan_setkacup/1002">중복</a><span class="cat">종료</span></td></tr>
  <tr><td class="tit"><span class="cat">종료</span></td></tr>
  <tr><td class="tit"><a href="/board/pan_setkacup/">번호 없음</a><span class="cat">종료</span></td></tr>
</tbody></table>
</body></html>`

const closedPostHTML = `<html><body>
<div class="ub_bet_start">
  <p>베팅 종료됨</p>
  <p>마감 시각: 2025년 03월 10일 (월) 21:30:00</p>
</div>
<div class="wato_view">
  <div class="item">
    <div class="apply_list"><table><tbody>
      <tr><th>닉네임</th><th>베팅</th><th>지급</th><th>시각</th></tr>
      <tr><td> alice </td><td>1,000</td><td>0</td><td>10일 20:00:00</td></tr>
      <tr><td>bob</td><td>abc</td><td>0</td><td>10일 20:01:00</td></tr>
    </tbody></table></div>
  </div>
  <div class="item">
    <div class="apply_list"><table><tbody>
      <tr><td>alice</td><td>500</td><td>1,500 P</td><td>10일 20:02:00</td></tr>
      <tr><td>carol</td><td>2,000</td><td>4,000</td><td>10일 20:03:00</td></tr>
    </tbody></table></div>
  </div>
  <div class="item">
    <div class="apply_list"><table><tbody>
      <tr><td>dave</td><td>100</td><td>0</td><td>10일 20:04:00</td></tr>
    </tbody></table></div>
  </div>
</div>
</body></html>`

func TestParseListPage_KeepsOnlyClosedRegularRows(t *testing.T) {
	t.Parallel()

	ids, err := ParseListPage(strings.NewReader(listPageHTML))
	require.NoError(t, err)
	assert.Equal(t, []int64{1002}, ids)
}

func TestParseListPage_NoRows(t *testing.T) {
	t.Parallel()

	ids, err := ParseListPage(strings.NewReader(`<html><body><p>empty</p></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParsePostPage_ClosedPost(t *testing.T) {
	t.Parallel()

	parsed, err := ParsePostPage(strings.NewReader(closedPostHTML), seoul)
	require.NoError(t, err)

	assert.True(t, parsed.IsBetting)
	assert.True(t, parsed.IsClosed)
	require.NotNil(t, parsed.Deadline)
	assert.True(t, parsed.Deadline.Equal(time.Date(2025, 3, 10, 21, 30, 0, 0, seoul)))
	assert.Equal(t, 1, parsed.SkippedRows)
	assert.Equal(t, []wager.Row{
		{Nickname: "alice", Side: wager.SideFirst, Stake: 1000, Payout: 0},
		{Nickname: "alice", Side: wager.SideSecond, Stake: 500, Payout: 1500},
		{Nickname: "carol", Side: wager.SideSecond, Stake: 2000, Payout: 4000},
	}, parsed.Rows)

	parsed.PostID = 1002
	outcome := wager.Decide(parsed)
	require.True(t, outcome.Ingestible())
	assert.Len(t, outcome.Post.Rows, 3)
	assert.Equal(t, time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC), outcome.Post.Deadline)
}

func TestParsePostPage_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		html   string
		kind   wager.OutcomeKind
		reason string
	}{
		{
			name:   "not a betting post",
			html:   `<html><body><div class="content">일반 글</div></body></html>`,
			kind:   wager.OutcomeSkipPermanently,
			reason: wager.ReasonNotBettingPost,
		},
		{
			name:   "still open",
			html:   `<html><body><div class="ub_bet_start">진행중 마감 시각: 2025년 03월 10일 21:30:00</div></body></html>`,
			kind:   wager.OutcomeSkipRetryLater,
			reason: wager.ReasonStillOpen,
		},
		{
			name:   "invalid deadline date",
			html:   `<html><body><div class="ub_bet_start">종료됨 마감 시각: 2025년 02월 30일 21:30:00</div></body></html>`,
			kind:   wager.OutcomeSkipRetryLater,
			reason: wager.ReasonNoDeadline,
		},
		{
			name: "deadline only outside the betting block",
			html: `<html><body><div class="ub_bet_start">베팅 종료됨</div>` +
				`<div class="wato_view"><div class="item"><div class="apply_list"><table><tbody>` +
				`<tr><td>alice</td><td>1,000</td><td>0</td><td>10일 20:00:00</td></tr>` +
				`</tbody></table></div></div></div>` +
				`<div class="comment">마감 시각: 2020년 01월 01일 00:00:00</div></body></html>`,
			kind:   wager.OutcomeSkipRetryLater,
			reason: wager.ReasonNoDeadline,
		},
		{
			name:   "no participant rows",
			html:   `<html><body><div class="ub_bet_start">종료됨 마감 시각: 2025년 03월 10일 21:30:00</div><div class="wato_view"></div></body></html>`,
			kind:   wager.OutcomeSkipRetryLater,
			reason: wager.ReasonNoRows,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := ParsePostPage(strings.NewReader(tc.html), seoul)
			require.NoError(t, err)
			parsed.PostID = 1

			outcome := wager.Decide(parsed)
			assert.Equal(t, tc.kind, outcome.Kind)
			assert.Equal(t, tc.reason, outcome.Reason)
		})
	}
}

func TestNormalizeAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1,000", want: 1000},
		{in: " 25 000 ", want: 25000},
		{in: "1,500 P", want: 1500},
		{in: "300원", want: 300},
		{in: "0", want: 0},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "12x4", wantErr: true},
		{in: "P", wantErr: true},
	}

	for _, tc := range tests {
		got, err := NormalizeAmount(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("NormalizeAmount(%q) expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NormalizeAmount(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeAmount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
