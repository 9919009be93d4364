package customer

import (
	"strconv"
	"strings"
	"time"
)

// 日付フィールドの受け付けフォーマット
const dateLayout = "2006-01-02"

// parseMoney は金額の文字列表現をfloat64に変換する。
// 登録フォームからは数値が文字列で届くため、サービス層で変換する。
// 空文字列は0として扱う。
func parseMoney(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// parseCount は件数の文字列表現をintに変換する。空文字列は0として扱う。
func parseCount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// parseDate はYYYY-MM-DD形式の日付文字列をtime.Timeに変換する。
// 空文字列はゼロ値として扱う。
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// documentURLsConsistent は提出書類URLのペアが両方設定済みか
// 両方空かを検証する。片方だけの状態は登録として不完全とみなす。
func documentURLsConsistent(a, b string) bool {
	return (a == "") == (b == "")
}

// clampLimit はページサイズを1以上cap以下に正規化する。
// 0以下の指定はcapに丸める。
func clampLimit(limit, cap int) int {
	if limit <= 0 || limit > cap {
		return cap
	}
	return limit
}
