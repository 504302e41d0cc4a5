package diag

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

// displayCompileError renders a single CompileError to the terminal. The
// "V error:"-style label comes from pterm's preconfigured Error printer; when
// the error carries a source position, the offending line is printed with
// caret underlining beneath it.
func displayCompileError(err *CompileError) {
	if err.File != "" && err.Pos != nil {
		pterm.Error.Printfln("%s:%d:%d: %s", err.File, err.Pos.StartLn+1, err.Pos.StartCol+1, err.Message)
		displaySourceText(err.File, err.Pos)
	} else if err.File != "" {
		pterm.Error.Printfln("%s: %s", err.File, err.Message)
	} else {
		pterm.Error.Println(err.Message)
	}

	if err.Detail != "" {
		pterm.DefaultBasicText.Println(err.Detail)
	}
}

// displayWarning renders a non-fatal warning message.
func displayWarning(msg string) {
	pterm.Warning.Println(msg)
}

// displayHeader renders the pre-compilation banner.
func displayHeader(target string, caching bool) {
	cacheLabel := "disabled"
	if caching {
		cacheLabel = "enabled"
	}

	pterm.DefaultHeader.WithFullWidth().Printfln("novac — target %s, caching %s", target, cacheLabel)
}

// displayPhaseDone renders a single phase's completion and timing.
func displayPhaseDone(phase string, elapsed time.Duration) {
	pterm.Info.Printfln("%-14s %.3fs", phase, elapsed.Seconds())
}

// displayFinished renders the concluding compilation message.
func displayFinished(succeeded bool, outputPath string, elapsed time.Duration) {
	if succeeded {
		pterm.Success.Printfln("built %s (%.3fs)", outputPath, elapsed.Seconds())
	} else {
		pterm.Error.Printfln("build failed (%.3fs)", elapsed.Seconds())
	}
}

// displaySourceText displays the source lines covered by a position, with
// caret underlining, mirroring the teacher's context-snippet rendering.
func displaySourceText(absPath string, pos *Position) {
	file, err := os.Open(absPath)
	if err != nil {
		return
	}
	defer file.Close()

	var lines []string
	sc := bufio.NewScanner(file)
	for ln := 0; sc.Scan(); ln++ {
		if pos.StartLn <= ln && ln <= pos.EndLn {
			lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
		}
	}

	if len(lines) == 0 {
		return
	}

	minIndent := math.MaxInt
	for _, line := range lines {
		indent := 0
		for _, c := range line {
			if c == ' ' {
				indent++
			} else {
				break
			}
		}

		if indent < minIndent {
			minIndent = indent
		}
	}

	maxLineNumLen := len(strconv.Itoa(pos.EndLn + 1))
	lineNumFmt := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	for i, line := range lines {
		fmt.Printf(lineNumFmt, i+pos.StartLn+1)

		trimmed := line
		if minIndent < len(line) {
			trimmed = line[minIndent:]
		}
		fmt.Println(trimmed)

		fmt.Print(strings.Repeat(" ", maxLineNumLen), " | ")

		var prefix int
		if i == 0 {
			prefix = pos.StartCol - minIndent
		}
		if prefix < 0 {
			prefix = 0
		}

		var suffix int
		if i == len(lines)-1 {
			suffix = len(line) - pos.EndCol
		}
		if suffix < 0 {
			suffix = 0
		}

		carets := len(trimmed) - suffix - prefix
		if carets < 1 {
			carets = 1
		}

		fmt.Print(strings.Repeat(" ", prefix))
		fmt.Println(strings.Repeat("^", carets))
	}

	fmt.Println()
}
