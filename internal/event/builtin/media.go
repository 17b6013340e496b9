// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package builtin

import (
	"fmt"
	"strings"

	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/naming"
)

// screen size in tiles for text placement.
const (
	textColumns = 40
	textRows    = 28
)

func mediaKinds() []event.Kind {
	return []event.Kind{
		{
			ID:          "music-play",
			Description: "Start a music track",
			Group:       "media",
			Fields: []event.Field{
				ref("music", event.RefMusic),
				boolean("loop", true),
			},
			Emit: emitMusicPlay,
		},
		{
			ID:          "music-stop",
			Description: "Stop the current music track",
			Group:       "media",
			Emit:        emitMusicStop,
		},
		{
			ID:          "sound-play",
			Description: "Play a sound effect",
			Group:       "media",
			Fields: []event.Field{
				ref("sound", event.RefSound),
				choice("channel", "auto", "auto", "1", "2", "3"),
			},
			Emit: emitSoundPlay,
		},
		{
			ID:          "text-show",
			Description: "Draw text on the window plane",
			Group:       "media",
			Fields: []event.Field{
				text("text", ""),
				number("x", 0, textColumns-1, 1),
				number("y", 0, textRows-1, 20),
				boolean("waitForInput", true),
			},
			Emit: emitTextShow,
		},
		{
			ID:          "script-lock",
			Description: "Freeze player movement while a script runs",
			Group:       "script",
			Emit:        emitScriptLock(true),
		},
		{
			ID:          "script-unlock",
			Description: "Restore player movement",
			Group:       "script",
			Emit:        emitScriptLock(false),
		},
	}
}

func emitMusicPlay(args event.Args, ctx event.Context, w event.Writer) error {
	name := args.String("music")
	if name == "" {
		return fmt.Errorf("no music track selected")
	}
	sym := ctx.Resource(event.RefMusic, name)
	w.EmitComment("play music " + name)
	w.EmitLine(fmt.Sprintf("XGM_startPlay(%s);", sym))
	if args.Bool("loop") {
		w.EmitLine("XGM_setLoopNumber(-1);")
	} else {
		w.EmitLine("XGM_setLoopNumber(0);")
	}
	return nil
}

func emitMusicStop(_ event.Args, _ event.Context, w event.Writer) error {
	w.EmitComment("stop music")
	w.EmitLine("XGM_stopPlay();")
	return nil
}

func emitSoundPlay(args event.Args, ctx event.Context, w event.Writer) error {
	name := args.String("sound")
	if name == "" {
		return fmt.Errorf("no sound selected")
	}
	sym := ctx.Resource(event.RefSound, name)
	channel := "SOUND_PCM_CH_AUTO"
	if c := args.String("channel"); c != "auto" {
		channel = "SOUND_PCM_CH" + c
	}
	w.EmitComment("play sound " + name)
	w.EmitLine(fmt.Sprintf("XGM2_playPCM(%s, sizeof(%s), %s);", sym, sym, channel))
	return nil
}

func emitTextShow(args event.Args, _ event.Context, w event.Writer) error {
	x, y := args.Int("x"), args.Int("y")
	lines := strings.Split(strings.TrimRight(args.String("text"), "\n"), "\n")
	if y+len(lines) > textRows {
		return fmt.Errorf("%d text lines starting at row %d overflow the screen", len(lines), y)
	}

	w.EmitComment("show text " + quote(args.String("text")))
	for i, line := range lines {
		w.EmitLine(fmt.Sprintf("VDP_drawText(\"%s\", %d, %d);", cString(line), x, y+i))
	}
	if !args.Bool("waitForInput") {
		return nil
	}
	w.EmitLine("md_wait_button();")
	for i, line := range lines {
		w.EmitLine(fmt.Sprintf("VDP_clearText(%d, %d, %d);", x, y+i, len([]rune(naming.Fold(line)))))
	}
	return nil
}

func emitScriptLock(lock bool) event.EmitFunc {
	return func(_ event.Args, _ event.Context, w event.Writer) error {
		if lock {
			w.EmitComment("lock player input")
			w.EmitLine("script_locked = TRUE;")
			return nil
		}
		w.EmitComment("unlock player input")
		w.EmitLine("script_locked = FALSE;")
		return nil
	}
}
