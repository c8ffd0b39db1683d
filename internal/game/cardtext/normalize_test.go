package cardtext

import "testing"

func TestNormalize_FoldsWidthAndWhitespace(t *testing.T) {
	got := Normalize("パワー＋２０００ する")
	want := "パワー+2000する"
	if got != want {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalize_StripsReminderText(t *testing.T) {
	got := Normalize("『ブロッカー』(相手のアタックの対象をこのカードに変更できる。)")
	want := "『ブロッカー』"
	if got != want {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalize_StripsNestedReminderText(t *testing.T) {
	got := Normalize("『登場時』(注記(内側)あり)カードを1枚引く。")
	want := "『登場時』カードを1枚引く。"
	if got != want {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalize_UnifiesBracketsAndResourceName(t *testing.T) {
	got := Normalize("【登場時】ドン!!デッキからドン!!1枚を追加する。")
	want := "『登場時』ドンデッキからドン1枚を追加する。"
	if got != want {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalize_ExpandsCircledDigit(t *testing.T) {
	got := Normalize("『起動メイン』②:カードを1枚引く。")
	want := "『起動メイン』ドン2枚をレストにできる:カードを1枚引く。"
	if got != want {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalize_MinusVariants(t *testing.T) {
	for _, in := range []string{"コスト−2", "コスト–2", "コスト-2"} {
		if got := Normalize(in); got != "コスト-2" {
			t.Fatalf("Normalize(%q) = %q", in, got)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"『アタック時』①(コスト):このターン中、パワー＋１０００。",
		"【トリガー】相手のコスト４以下のキャラ１枚を、持ち主の手札に戻す。",
		"DON!!−１",
		"『登場時』(注記(内側)あり)カードを1枚引く。",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
