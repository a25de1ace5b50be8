// Package palette holds the color schemes behind the built-in themes.
package palette

// Palette is a small color scheme in hex notation. Themes derive every
// semantic style from these ten colors.
type Palette struct {
	Foreground string
	Muted      string
	Red        string
	Orange     string
	Yellow     string
	Green      string
	Cyan       string
	Blue       string
	Purple     string
	Pink       string
}

var (
	PaletteDefault = Palette{
		Foreground: "#d0d0d0", Muted: "#808080",
		Red: "#ff5f5f", Orange: "#ffaf5f", Yellow: "#ffd75f", Green: "#87d75f",
		Cyan: "#5fd7d7", Blue: "#5fafff", Purple: "#af87ff", Pink: "#ff87d7",
	}
	PaletteOutrunElectric = Palette{
		Foreground: "#e0def4", Muted: "#6c5f8d",
		Red: "#ff2a6d", Orange: "#ff9e64", Yellow: "#f9f871", Green: "#05ffa1",
		Cyan: "#01cdfe", Blue: "#3d7bff", Purple: "#b967ff", Pink: "#ff71ce",
	}
	PaletteDoomIosvkem = Palette{
		Foreground: "#dddddd", Muted: "#6c6c6c",
		Red: "#d02b61", Orange: "#d08928", Yellow: "#d4c15f", Green: "#60aa00",
		Cyan: "#00aa80", Blue: "#5692d1", Purple: "#8787ff", Pink: "#d74880",
	}
	PaletteDoomGruvbox = Palette{
		Foreground: "#ebdbb2", Muted: "#928374",
		Red: "#fb4934", Orange: "#fe8019", Yellow: "#fabd2f", Green: "#b8bb26",
		Cyan: "#8ec07c", Blue: "#83a598", Purple: "#d3869b", Pink: "#d3869b",
	}
	PaletteDoomDracula = Palette{
		Foreground: "#f8f8f2", Muted: "#6272a4",
		Red: "#ff5555", Orange: "#ffb86c", Yellow: "#f1fa8c", Green: "#50fa7b",
		Cyan: "#8be9fd", Blue: "#8be9fd", Purple: "#bd93f9", Pink: "#ff79c6",
	}
	PaletteDoomNord = Palette{
		Foreground: "#d8dee9", Muted: "#616e88",
		Red: "#bf616a", Orange: "#d08770", Yellow: "#ebcb8b", Green: "#a3be8c",
		Cyan: "#88c0d0", Blue: "#81a1c1", Purple: "#b48ead", Pink: "#b48ead",
	}
	PaletteTokyoNight = Palette{
		Foreground: "#c0caf5", Muted: "#565f89",
		Red: "#f7768e", Orange: "#ff9e64", Yellow: "#e0af68", Green: "#9ece6a",
		Cyan: "#7dcfff", Blue: "#7aa2f7", Purple: "#bb9af7", Pink: "#ff007c",
	}
	PaletteSolarizedNightfall = Palette{
		Foreground: "#93a1a1", Muted: "#586e75",
		Red: "#dc322f", Orange: "#cb4b16", Yellow: "#b58900", Green: "#859900",
		Cyan: "#2aa198", Blue: "#268bd2", Purple: "#6c71c4", Pink: "#d33682",
	}
	PaletteCatppuccinMocha = Palette{
		Foreground: "#cdd6f4", Muted: "#6c7086",
		Red: "#f38ba8", Orange: "#fab387", Yellow: "#f9e2af", Green: "#a6e3a1",
		Cyan: "#94e2d5", Blue: "#89b4fa", Purple: "#cba6f7", Pink: "#f5c2e7",
	}
	PaletteGruvboxLight = Palette{
		Foreground: "#3c3836", Muted: "#928374",
		Red: "#9d0006", Orange: "#af3a03", Yellow: "#b57614", Green: "#79740e",
		Cyan: "#427b58", Blue: "#076678", Purple: "#8f3f71", Pink: "#8f3f71",
	}
	PaletteMonokaiVibrant = Palette{
		Foreground: "#f8f8f2", Muted: "#75715e",
		Red: "#f92672", Orange: "#fd971f", Yellow: "#e6db74", Green: "#a6e22e",
		Cyan: "#66d9ef", Blue: "#66d9ef", Purple: "#ae81ff", Pink: "#f92672",
	}
	PaletteOneDarkAurora = Palette{
		Foreground: "#abb2bf", Muted: "#5c6370",
		Red: "#e06c75", Orange: "#d19a66", Yellow: "#e5c07b", Green: "#98c379",
		Cyan: "#56b6c2", Blue: "#61afef", Purple: "#c678dd", Pink: "#ff6ac1",
	}
	PaletteSynthwave84 = Palette{
		Foreground: "#f0eff1", Muted: "#848bbd",
		Red: "#fe4450", Orange: "#f97e72", Yellow: "#fede5d", Green: "#72f1b8",
		Cyan: "#36f9f6", Blue: "#2ee2fa", Purple: "#b893ce", Pink: "#ff7edb",
	}
	PaletteKanagawa = Palette{
		Foreground: "#dcd7ba", Muted: "#727169",
		Red: "#c34043", Orange: "#ffa066", Yellow: "#e6c384", Green: "#98bb6c",
		Cyan: "#7aa89f", Blue: "#7e9cd8", Purple: "#957fb8", Pink: "#d27e99",
	}
	PaletteRosePine = Palette{
		Foreground: "#e0def4", Muted: "#6e6a86",
		Red: "#eb6f92", Orange: "#f6c177", Yellow: "#f6c177", Green: "#31748f",
		Cyan: "#9ccfd8", Blue: "#31748f", Purple: "#c4a7e7", Pink: "#ebbcba",
	}
	PaletteRosePineDawn = Palette{
		Foreground: "#575279", Muted: "#9893a5",
		Red: "#b4637a", Orange: "#ea9d34", Yellow: "#ea9d34", Green: "#286983",
		Cyan: "#56949f", Blue: "#286983", Purple: "#907aa9", Pink: "#d7827e",
	}
	PaletteEverforest = Palette{
		Foreground: "#d3c6aa", Muted: "#859289",
		Red: "#e67e80", Orange: "#e69875", Yellow: "#dbbc7f", Green: "#a7c080",
		Cyan: "#83c092", Blue: "#7fbbb3", Purple: "#d699b6", Pink: "#d699b6",
	}
	PaletteEverforestLight = Palette{
		Foreground: "#5c6a72", Muted: "#939f91",
		Red: "#f85552", Orange: "#f57d26", Yellow: "#dfa000", Green: "#8da101",
		Cyan: "#35a77c", Blue: "#3a94c5", Purple: "#df69ba", Pink: "#df69ba",
	}
	PaletteNightOwl = Palette{
		Foreground: "#d6deeb", Muted: "#637777",
		Red: "#ef5350", Orange: "#f78c6c", Yellow: "#ecc48d", Green: "#addb67",
		Cyan: "#7fdbca", Blue: "#82aaff", Purple: "#c792ea", Pink: "#ff5874",
	}
	PaletteAyuMirage = Palette{
		Foreground: "#cccac2", Muted: "#5c6773",
		Red: "#f28779", Orange: "#ffa659", Yellow: "#ffd173", Green: "#d5ff80",
		Cyan: "#95e6cb", Blue: "#73d0ff", Purple: "#dfbfff", Pink: "#f29e74",
	}
	PaletteAyuLight = Palette{
		Foreground: "#5c6166", Muted: "#8a9199",
		Red: "#f07171", Orange: "#fa8d3e", Yellow: "#f2ae49", Green: "#86b300",
		Cyan: "#4cbf99", Blue: "#399ee6", Purple: "#a37acc", Pink: "#ed9366",
	}
	PaletteOneLight = Palette{
		Foreground: "#383a42", Muted: "#a0a1a7",
		Red: "#e45649", Orange: "#986801", Yellow: "#c18401", Green: "#50a14f",
		Cyan: "#0184bc", Blue: "#4078f2", Purple: "#a626a4", Pink: "#ca1243",
	}
	PaletteOneDark = Palette{
		Foreground: "#abb2bf", Muted: "#5c6370",
		Red: "#e06c75", Orange: "#d19a66", Yellow: "#e5c07b", Green: "#98c379",
		Cyan: "#56b6c2", Blue: "#61afef", Purple: "#c678dd", Pink: "#be5046",
	}
	PaletteSolarizedLight = Palette{
		Foreground: "#586e75", Muted: "#93a1a1",
		Red: "#dc322f", Orange: "#cb4b16", Yellow: "#b58900", Green: "#859900",
		Cyan: "#2aa198", Blue: "#268bd2", Purple: "#6c71c4", Pink: "#d33682",
	}
	PaletteSolarizedDark = Palette{
		Foreground: "#839496", Muted: "#586e75",
		Red: "#dc322f", Orange: "#cb4b16", Yellow: "#b58900", Green: "#859900",
		Cyan: "#2aa198", Blue: "#268bd2", Purple: "#6c71c4", Pink: "#d33682",
	}
	PaletteGithubLight = Palette{
		Foreground: "#24292f", Muted: "#6e7781",
		Red: "#cf222e", Orange: "#953800", Yellow: "#9a6700", Green: "#116329",
		Cyan: "#1b7c83", Blue: "#0969da", Purple: "#8250df", Pink: "#bf3989",
	}
	PaletteGithubDark = Palette{
		Foreground: "#c9d1d9", Muted: "#8b949e",
		Red: "#ff7b72", Orange: "#ffa657", Yellow: "#d29922", Green: "#7ee787",
		Cyan: "#a5d6ff", Blue: "#79c0ff", Purple: "#d2a8ff", Pink: "#f778ba",
	}
	PalettePapercolorLight = Palette{
		Foreground: "#444444", Muted: "#878787",
		Red: "#af0000", Orange: "#d75f00", Yellow: "#af8700", Green: "#008700",
		Cyan: "#005f87", Blue: "#0087af", Purple: "#8700af", Pink: "#d70087",
	}
	PalettePapercolorDark = Palette{
		Foreground: "#d0d0d0", Muted: "#808080",
		Red: "#af005f", Orange: "#ff5faf", Yellow: "#ffaf00", Green: "#5faf00",
		Cyan: "#00afaf", Blue: "#5fafd7", Purple: "#af87d7", Pink: "#d75f87",
	}
	PaletteOceanicNext = Palette{
		Foreground: "#c0c5ce", Muted: "#65737e",
		Red: "#ec5f67", Orange: "#f99157", Yellow: "#fac863", Green: "#99c794",
		Cyan: "#5fb3b3", Blue: "#6699cc", Purple: "#c594c5", Pink: "#ab7967",
	}
	PaletteHorizon = Palette{
		Foreground: "#d5d8da", Muted: "#6c6f93",
		Red: "#e95678", Orange: "#fab795", Yellow: "#fac29a", Green: "#29d398",
		Cyan: "#59e1e3", Blue: "#26bbd9", Purple: "#ee64ac", Pink: "#f09483",
	}
	PalettePalenight = Palette{
		Foreground: "#a6accd", Muted: "#676e95",
		Red: "#f07178", Orange: "#f78c6c", Yellow: "#ffcb6b", Green: "#c3e88d",
		Cyan: "#89ddff", Blue: "#82aaff", Purple: "#c792ea", Pink: "#ff5370",
	}
)
