package menu

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

const menuWidth = 60
const menuHeight = 12
const pageSize = menuHeight - 2
const resultHeight = 20
const resultWidth = 70

// Entry is one line of a menu.
type Entry interface {
	// Label returns the string will show in menu.
	Label() string
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func Init() error {
	return ui.Init()
}

func Close() {
	ui.Close()
}

// newParagraph returns a widgets.Paragraph struct with given initial text.
func newParagraph(initText string, border bool, location int, wid int, ht int) *widgets.Paragraph {
	p := widgets.NewParagraph()
	p.Text = initText
	p.Border = border
	p.SetRect(0, location, wid, location+ht)
	p.TextStyle.Fg = ui.ColorWhite
	return p
}

// readKey reads a key from input stream.
func readKey(uiEvents <-chan ui.Event) string {
	for {
		e := <-uiEvents
		if e.Type == ui.KeyboardEvent || e.Type == ui.MouseEvent {
			return e.ID
		}
	}
}

// DisplayResult opens a new window and displays a message.
// each item in the message array will be displayed on a single line.
func DisplayResult(message []string, uiEvents <-chan ui.Event) (string, error) {
	defer ui.Clear()

	// if a message is longer then width of the window, split it to shorter lines
	text := []string{}
	for _, m := range message {
		for len(m) > resultWidth {
			text = append(text, m[:resultWidth])
			m = m[resultWidth:]
		}
		text = append(text, m)
	}

	p := widgets.NewParagraph()
	p.Border = true
	p.SetRect(0, 0, resultWidth+2, resultHeight+3)
	p.TextStyle.Fg = ui.ColorWhite

	hint := "(Press any key to continue, press <Esc> to exit.)"
	for line := 0; line < len(text); line += resultHeight {
		p.Title = fmt.Sprintf("Result---%v/%v", line, len(text))
		p.Text = strings.Join(text[line:min(len(text), line+resultHeight)], "\n") + "\n" + hint
		ui.Render(p)
		switch readKey(uiEvents) {
		case "<C-d>":
			return p.Text, io.EOF
		case "<Escape>":
			return p.Text, nil
		}
	}
	return p.Text, nil
}

// pager keeps track of the visible window of a menu.
type pager struct {
	labels []string
	title  string
	list   *widgets.List
	// first and last bound the entries shown on the current page.
	first, last int
}

func (p *pager) show(first int) {
	p.first = max(0, min(first, len(p.labels)-1))
	p.last = min(p.first+pageSize, len(p.labels))
	p.list.Rows = p.labels[p.first:p.last]
	p.list.Title = fmt.Sprintf("%s---%v/%v", p.title, p.first, len(p.labels))
	ui.Render(p.list)
}

// parsingMenuOption parses the user's operation in the menu page, such as page up, page down, selection. etc
func parsingMenuOption(labels []string, menu *widgets.List, input, warning *widgets.Paragraph, uiEvents <-chan ui.Event) (int, error) {
	if len(labels) == 0 {
		return 0, fmt.Errorf("No Entry in the menu")
	}

	pg := &pager{labels: labels, title: menu.Title, list: menu}
	pg.show(0)

	// keep tracking all input from user
	for {
		k := readKey(uiEvents)
		switch k {
		case "<C-d>", "<C-c>":
			return 0, io.EOF
		case "<Enter>":
			choose := input.Text
			input.Text = ""
			ui.Render(input)
			// input is valid when it is a number on the current page
			c, err := strconv.Atoi(choose)
			if err == nil && c >= pg.first && c < pg.last {
				return c, nil
			}
			warning.Text = "Please enter a valid entry number."
			ui.Render(warning)
		case "<Backspace>":
			if len(input.Text) > 0 {
				input.Text = input.Text[:len(input.Text)-1]
				ui.Render(input)
			}
		case "<Left>", "<PageUp>":
			pg.show(pg.first - pageSize)
		case "<Right>", "<PageDown>":
			if pg.first+pageSize < len(labels) {
				pg.show(pg.first + pageSize)
			}
		case "<Up>", "<MouseWheelUp>":
			pg.show(pg.first - 1)
		case "<Down>", "<MouseWheelDown>":
			if pg.last < len(labels) {
				pg.show(pg.first + 1)
			}
		case "<Home>":
			pg.show(0)
		case "<End>":
			pg.show(len(labels) - pageSize)
		default:
			// the termui use a string begin at '<' to represent some special keys
			// for example the 'F1' key will be parsed to "<F1>" string .
			// only digits make sense in an entry number.
			if k[0] >= '0' && k[0] <= '9' {
				input.Text += k
				ui.Render(input)
			}
		}
	}
}

// DisplayMenu presents all entries into a menu with numbers.
// user inputs a number to choose from them.
func DisplayMenu(menuTitle string, introwords string, entries []Entry, uiEvents <-chan ui.Event) (Entry, error) {
	defer ui.Clear()

	// listData contains all choice's labels
	listData := []string{}
	for i, e := range entries {
		listData = append(listData, fmt.Sprintf("[%d] %s", i, e.Label()))
	}

	location := 0
	menu := widgets.NewList()
	menu.Title = menuTitle
	// menus's hight always be 12, which could diplay 10 entrys in one page
	menu.SetRect(0, location, menuWidth, location+menuHeight)
	location += menuHeight
	menu.TextStyle.Fg = ui.ColorWhite

	intro := newParagraph(introwords, false, location, len(introwords)+4, 3)
	location += 2
	input := newParagraph("", true, location, menuWidth, 3)
	location += 3
	warning := newParagraph("", false, location, menuWidth, 3)

	ui.Render(intro)
	ui.Render(input)
	ui.Render(warning)

	chooseIndex, err := parsingMenuOption(listData, menu, input, warning, uiEvents)
	if err != nil {
		return nil, fmt.Errorf("Fail to get the choose from menu: %w", err)
	}

	return entries[chooseIndex], nil
}
