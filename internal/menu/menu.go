// internal/menu/menu.go
// Package: menu

// Package menu is the numbered console menu: pick a language, then a suite or
// a custom prompt, repeatedly, until the user quits.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mwiater/gollamabench/internal/catalog"
)

// ErrQuit is returned when the user quits or input ends.
var ErrQuit = errors.New("quit")

// Selection is one benchmark the user asked for.
type Selection struct {
	Language catalog.Language
	Kind     catalog.Kind
	Label    string
	Tests    []catalog.Test
}

type texts struct {
	title, comprehensive, quick, custom, language, quit string
	choose, askPrompt, noPrompt, invalid, goodbye       string
}

var messages = map[catalog.Language]texts{
	catalog.English: {
		title:         "Main menu",
		comprehensive: "Comprehensive test of all models",
		quick:         "Quick test of all models",
		custom:        "Custom question to all models",
		language:      "Change language",
		quit:          "Exit",
		choose:        "Choose option (1-4) or 'q' to exit: ",
		askPrompt:     "Enter your question: ",
		noPrompt:      "No question provided!",
		invalid:       "Invalid choice! Please try again.",
		goodbye:       "Goodbye!",
	},
	catalog.Polish: {
		title:         "Menu główne",
		comprehensive: "Kompleksowy test wszystkich modeli",
		quick:         "Szybki test wszystkich modeli",
		custom:        "Własne pytanie do wszystkich modeli",
		language:      "Zmień język",
		quit:          "Wyjście",
		choose:        "Wybierz opcję (1-4) lub 'q' aby wyjść: ",
		askPrompt:     "Wpisz swoje pytanie: ",
		noPrompt:      "Nie podano pytania!",
		invalid:       "Nieprawidłowy wybór! Spróbuj ponownie.",
		goodbye:       "Do widzenia!",
	},
}

// Menu reads choices from in and prints to out. It is not safe for
// concurrent use.
type Menu struct {
	in   *bufio.Reader
	out  io.Writer
	lang catalog.Language
}

// New returns a menu starting in lang. An empty lang makes Select ask for
// one first.
func New(in io.Reader, out io.Writer, lang catalog.Language) *Menu {
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	return &Menu{in: br, out: out, lang: lang}
}

// Reader exposes the buffered input so other prompts (the API key) read from
// the same stream.
func (m *Menu) Reader() *bufio.Reader { return m.in }

// Language is the current menu and suite language.
func (m *Menu) Language() catalog.Language { return m.lang }

func (m *Menu) readLine() (string, error) {
	line, err := m.in.ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			return "", ErrQuit
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// SelectLanguage asks until a valid language is chosen.
func (m *Menu) SelectLanguage() (catalog.Language, error) {
	langs := catalog.Languages()
	fmt.Fprintln(m.out, "Wybór języka testów / Language Selection")
	fmt.Fprintln(m.out, strings.Repeat("=", 40))
	for i, l := range langs {
		fmt.Fprintf(m.out, "%d. %s\n", i+1, l.DisplayName())
	}
	for {
		fmt.Fprintf(m.out, "\nWybierz język (1-%d) / Choose language: ", len(langs))
		line, err := m.readLine()
		if err != nil {
			return "", err
		}
		if isQuit(line) {
			fmt.Fprintln(m.out, "Wyjście / Exit...")
			return "", ErrQuit
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(langs) {
			fmt.Fprintln(m.out, "Nieprawidłowy wybór! / Invalid choice!")
			continue
		}
		m.lang = langs[n-1]
		fmt.Fprintf(m.out, "Wybrano język / Selected: %s\n", m.lang.DisplayName())
		return m.lang, nil
	}
}

// Select shows the main menu until the user picks a benchmark, and returns
// it. ErrQuit means the user is done.
func (m *Menu) Select() (Selection, error) {
	if m.lang == "" {
		if _, err := m.SelectLanguage(); err != nil {
			return Selection{}, err
		}
	}
	for {
		t := messages[m.lang]
		fmt.Fprintf(m.out, "\n%s\n", t.title)
		fmt.Fprintf(m.out, "1. %s\n2. %s\n3. %s\n4. %s\nq. %s\n", t.comprehensive, t.quick, t.custom, t.language, t.quit)
		fmt.Fprintf(m.out, "\n%s", t.choose)

		line, err := m.readLine()
		if err != nil {
			return Selection{}, err
		}
		switch {
		case isQuit(line):
			fmt.Fprintln(m.out, t.goodbye)
			return Selection{}, ErrQuit
		case line == "1":
			return m.suite(catalog.Comprehensive)
		case line == "2":
			return m.suite(catalog.Quick)
		case line == "3":
			fmt.Fprint(m.out, t.askPrompt)
			prompt, err := m.readLine()
			if err != nil {
				return Selection{}, err
			}
			tests, err := catalog.CustomSuite(prompt)
			if err != nil {
				fmt.Fprintln(m.out, t.noPrompt)
				continue
			}
			return Selection{
				Language: m.lang,
				Kind:     catalog.Custom,
				Label:    string(m.lang) + "_custom",
				Tests:    tests,
			}, nil
		case line == "4":
			if _, err := m.SelectLanguage(); err != nil {
				return Selection{}, err
			}
		default:
			fmt.Fprintln(m.out, t.invalid)
		}
	}
}

func (m *Menu) suite(kind catalog.Kind) (Selection, error) {
	tests, err := catalog.Suite(m.lang, kind)
	if err != nil {
		return Selection{}, err
	}
	return Selection{
		Language: m.lang,
		Kind:     kind,
		Label:    string(m.lang) + "_" + string(kind),
		Tests:    tests,
	}, nil
}

func isQuit(s string) bool {
	s = strings.ToLower(s)
	return s == "q" || s == "quit"
}
