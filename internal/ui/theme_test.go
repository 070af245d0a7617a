package ui

import "testing"

func TestGetTheme_FallsBackToDefault(t *testing.T) {
	if got := GetTheme("Nope").Name; got != DefaultThemeName {
		t.Fatalf("GetTheme fallback = %q, want %q", got, DefaultThemeName)
	}
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
}

func TestNextTheme_Cycles(t *testing.T) {
	names := ThemeNames()
	current := names[0]
	for i := 1; i <= len(names); i++ {
		current = NextTheme(current)
		if want := names[i%len(names)]; current != want {
			t.Fatalf("step %d: got %q, want %q", i, current, want)
		}
	}
	if got := NextTheme("unknown"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q", got)
	}
}

func TestThemes_DefineEveryLevelColor(t *testing.T) {
	for _, name := range ThemeNames() {
		theme := GetTheme(name)
		for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
			if theme.LevelColors[level] == "" {
				t.Fatalf("%s missing %s colour", name, level)
			}
		}
		if theme.Surface == "" || theme.SelectionBg == "" || theme.Danger == "" {
			t.Fatalf("%s has empty palette entries", name)
		}
	}
}

func TestLevelStyle_UnknownLevelUsesMuted(t *testing.T) {
	styles := GetTheme(DefaultThemeName).Styles()
	if got := styles.LevelStyle("trace").GetForeground(); got != styles.MutedText.GetForeground() {
		t.Fatalf("unknown level foreground = %v", got)
	}
}
