package menu

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	ui "github.com/gizak/termui/v3"
)

type testEntry struct {
	label string
}

func (u *testEntry) Label() string {
	return u.label
}

func TestNewParagraph(t *testing.T) {
	testText := "newParagraph test"
	p := newParagraph(testText, false, 0, 50, 3)
	if testText != p.Text {
		t.Errorf("Incorrect value for p.Text. got: %v, want: %v", p.Text, testText)
	}
}

func pressKey(ch chan ui.Event, input []string) {
	var key ui.Event
	for _, id := range input {
		key = ui.Event{
			Type: ui.KeyboardEvent,
			ID:   id,
		}
		ch <- key
	}
}

func lines(s string, n int) []string {
	l := make([]string, n)
	for i := range l {
		l[i] = s
	}
	return l
}

const hint = "(Press any key to continue, press <Esc> to exit.)"

func TestDisplayResult(t *testing.T) {
	long := strings.Repeat("x", resultWidth)
	for _, tt := range []struct {
		name      string
		msg       []string
		userInput []string
		want      string
		wantErr   error
	}{
		{
			name:      "short_message",
			msg:       []string{"done: AZ3166_A as baseEEFF"},
			userInput: []string{"q"},
			want:      "done: AZ3166_A as baseEEFF\n" + hint,
		},
		{
			// escape leaves on the first page
			name:      "first_page_escape",
			msg:       lines("done", 31),
			userInput: []string{"<Escape>"},
			want:      strings.Join(lines("done", resultHeight), "\n") + "\n" + hint,
		},
		{
			name:      "last_page",
			msg:       lines("done", 31),
			userInput: []string{"a", "a"},
			want:      strings.Join(lines("done", 11), "\n") + "\n" + hint,
		},
		{
			name:      "wrapped_line",
			msg:       []string{long + long + "tail", "next"},
			userInput: []string{"<Escape>"},
			want:      long + "\n" + long + "\ntail\nnext\n" + hint,
		},
		{
			name:      "ctrl_d",
			msg:       lines("failed", 31),
			userInput: []string{"<C-d>"},
			want:      strings.Join(lines("failed", resultHeight), "\n") + "\n" + hint,
			wantErr:   io.EOF,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			uiEvents := make(chan ui.Event)
			go pressKey(uiEvents, tt.userInput)
			msg, err := DisplayResult(tt.msg, uiEvents)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DisplayResult: got error %v, want %v", err, tt.wantErr)
			}
			if tt.want != msg {
				t.Errorf("Incorrect value for msg. got: %q, want: %q", msg, tt.want)
			}
		})
	}
}

func TestDisplayMenu(t *testing.T) {
	e := make([]Entry, 12)
	for i := range e {
		e[i] = &testEntry{label: fmt.Sprintf("AZ3166_%02d", i)}
	}

	for _, tt := range []struct {
		name      string
		entries   []Entry
		userInput []string
		want      Entry
	}{
		{
			name:      "hit_0",
			entries:   e[:3],
			userInput: []string{"0", "<Enter>"},
			want:      e[0],
		},
		{
			name:      "hit_1",
			entries:   e[:3],
			userInput: []string{"1", "<Enter>"},
			want:      e[1],
		},
		{
			name:      "hit_2",
			entries:   e[:3],
			userInput: []string{"2", "<Enter>"},
			want:      e[2],
		},
		{
			name:      "letters_are_ignored",
			entries:   e[:3],
			userInput: []string{"a", "1", "b", "<Enter>"},
			want:      e[1],
		},
		{
			name:      "exceed_the_bound_then_right_input",
			entries:   e[:3],
			userInput: []string{"4", "<Enter>", "0", "<Enter>"},
			want:      e[0],
		},
		{
			name:      "right_input_with_backspace",
			entries:   e[:3],
			userInput: []string{"2", "1", "<Backspace>", "<Enter>"},
			want:      e[2],
		},
		{
			name:    "<pageDown>_<pageUp>_<pageDown>_hit_11",
			entries: e,
			// hit <pageDown> -> <pageUp> -> <pageDown> current page is : 0~9
			userInput: []string{"<PageDown>", "<pageUp>", "<PageDown>", "1", "1", "<Enter>"},
			want:      e[11],
		},
		{
			name:    "<Left>_<Right>_exceed_the_bound_then_right_input",
			entries: e,
			// hit <Left> -> <Right> current page is : 10~11 because the first <Left> should do nothing
			userInput: []string{"<Left>", "<Right>", "8", "<Enter>", "1", "0", "<Enter>"},
			want:      e[10],
		},
		{
			name:    "<Down>_<Down>_<Up>_exceed_the_bound_then_right_input",
			entries: e,
			// hit <Down> -> <Down> -> <Up> current page is : 1~10
			userInput: []string{"<Down>", "<Down>", "<Up>", "0", "<Enter>", "1", "<Enter>"},
			want:      e[1],
		},
		{
			name:    "<Down>_<End>_then_right_input",
			entries: e,
			// hit <Down> -> <End> current page is : 2~11 because the <End> will move to the last page
			userInput: []string{"<Down>", "<End>", "4", "<Enter>"},
			want:      e[4],
		},
		{
			name:    "<Down>_<Home>_then_right_input",
			entries: e,
			// hit <Down> -> <Home> current page is : 0~9 because the <End> will move to the first page
			userInput: []string{"<Down>", "<Home>", "0", "<Enter>"},
			want:      e[0],
		},
		{
			name:    "<MouseWheelDown>_<MouseWheelDown>_<MouseWheelUp>_then_right_input",
			entries: e,
			// scroll mouse wheel <MouseWheelDown> -> <MouseWheelDown> -> <MouseWheelUp> current page is : 1~10
			userInput: []string{"<MouseWheelDown>", "<MouseWheelDown>", "<MouseWheelUp>", "10", "<Enter>"},
			want:      e[10],
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			uiEvents := make(chan ui.Event)
			go pressKey(uiEvents, tt.userInput)

			chosen, err := DisplayMenu("test menu title", tt.name, tt.entries, uiEvents)

			if err != nil {
				t.Errorf("Error: %v", err)
			}
			if tt.want != chosen {
				t.Errorf("Incorrect choice. Choose %+v, want %+v", chosen, tt.want)
			}

		})
	}
}

func TestDisplayMenuAbort(t *testing.T) {
	for _, key := range []string{"<C-d>", "<C-c>"} {
		uiEvents := make(chan ui.Event)
		go pressKey(uiEvents, []string{"1", key})

		chosen, err := DisplayMenu("test menu title", "abort", []Entry{&testEntry{label: "entry 1"}}, uiEvents)
		if !errors.Is(err, io.EOF) {
			t.Errorf("%s: got error %v, want %v", key, err, io.EOF)
		}
		if chosen != nil {
			t.Errorf("%s: got %+v, want nil", key, chosen)
		}
	}
}

func TestDisplayMenuEmpty(t *testing.T) {
	if _, err := DisplayMenu("test menu title", "empty", nil, make(chan ui.Event)); err == nil {
		t.Errorf("DisplayMenu with no entries: got nil, want error")
	}
}
