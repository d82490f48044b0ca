// Package ui provides the graphical user interface for the SNX client.
// This file contains icon generation for the system tray.
package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/vpn"
)

// symbol is the glyph drawn inside the shield.
type symbol int

const (
	symbolLock symbol = iota
	symbolCheck
	symbolCross
	symbolDots
)

// IconStyle defines the colors and glyph of a tray icon.
type IconStyle struct {
	Size        int
	FillColor   color.RGBA
	BorderColor color.RGBA
	AccentColor color.RGBA
	SymbolColor color.RGBA
	Symbol      symbol
}

var white = color.RGBA{255, 255, 255, 255}

// iconStyles maps every display state to its icon.
var iconStyles = map[vpn.ConnectionState]IconStyle{
	vpn.StateConnected: {
		FillColor:   color.RGBA{38, 162, 105, 255},
		BorderColor: color.RGBA{46, 194, 126, 255},
		AccentColor: color.RGBA{143, 240, 164, 255},
		SymbolColor: white,
		Symbol:      symbolCheck,
	},
	vpn.StateDisconnected: {
		FillColor:   color.RGBA{119, 118, 123, 255},
		BorderColor: color.RGBA{154, 153, 150, 255},
		AccentColor: color.RGBA{192, 191, 188, 255},
		SymbolColor: white,
		Symbol:      symbolLock,
	},
	vpn.StateConnecting: {
		FillColor:   color.RGBA{205, 147, 9, 255},
		BorderColor: color.RGBA{229, 165, 10, 255},
		AccentColor: color.RGBA{248, 228, 92, 255},
		SymbolColor: white,
		Symbol:      symbolDots,
	},
	vpn.StateServiceDown: {
		FillColor:   color.RGBA{192, 28, 40, 255},
		BorderColor: color.RGBA{224, 27, 36, 255},
		AccentColor: color.RGBA{246, 97, 81, 255},
		SymbolColor: white,
		Symbol:      symbolCross,
	},
}

var (
	iconCacheMu sync.Mutex
	iconCache   = make(map[vpn.ConnectionState][]byte)
)

// trayIcon returns the PNG for state, generating it on first use.
func trayIcon(state vpn.ConnectionState) []byte {
	if state == vpn.StateDisconnecting {
		state = vpn.StateConnecting
	}

	iconCacheMu.Lock()
	defer iconCacheMu.Unlock()

	if data, ok := iconCache[state]; ok {
		return data
	}
	style := iconStyles[state]
	style.Size = common.TrayIconSize
	data := style.Render()
	iconCache[state] = data
	return data
}

// Render draws the icon and encodes it as PNG.
func (s IconStyle) Render() []byte {
	img := image.NewRGBA(image.Rect(0, 0, s.Size, s.Size))

	s.drawShield(img)
	switch s.Symbol {
	case symbolCheck:
		s.drawCheckmark(img)
	case symbolCross:
		s.drawCross(img)
	case symbolDots:
		s.drawDots(img)
	default:
		s.drawLock(img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		common.LogError("Could not encode tray icon: %v", err)
		return nil
	}
	return buf.Bytes()
}

func (s IconStyle) drawShield(img *image.RGBA) {
	size := s.Size
	centerX := float64(size) / 2
	topY := 1.0
	bottomY := float64(size) - 2
	shieldWidth := float64(size) - 4

	inside := func(x, y float64) bool {
		relY := (y - topY) / (bottomY - topY)
		if relY < 0 || relY > 1 {
			return false
		}
		var halfWidth float64
		if relY < 0.5 {
			halfWidth = shieldWidth/2 - relY*0.5
		} else {
			progress := (relY - 0.5) * 2
			halfWidth = (shieldWidth/2 - 0.25) * (1 - progress*progress)
		}
		return x >= centerX-halfWidth && x <= centerX+halfWidth
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			if !inside(fx, fy) {
				continue
			}
			edge := !inside(fx-1, fy) || !inside(fx+1, fy) || !inside(fx, fy-1) || !inside(fx, fy+1)
			switch {
			case edge:
				img.Set(x, y, s.BorderColor)
			case float64(y)/float64(size) < 0.3:
				img.Set(x, y, s.AccentColor)
			default:
				img.Set(x, y, s.FillColor)
			}
		}
	}
}

func (s IconStyle) plot(img *image.RGBA, x, y int) {
	if x >= 0 && x < s.Size && y >= 0 && y < s.Size {
		img.Set(x, y, s.SymbolColor)
	}
}

func (s IconStyle) drawCheckmark(img *image.RGBA) {
	points := [][2]int{
		{6, 11}, {7, 11}, {7, 12}, {8, 12}, {8, 13}, {9, 13},
		{9, 12}, {10, 12}, {10, 11}, {11, 11}, {11, 10}, {12, 10},
		{12, 9}, {13, 9}, {13, 8}, {14, 8},
	}
	for _, p := range points {
		s.plot(img, p[0], p[1])
	}
}

func (s IconStyle) drawCross(img *image.RGBA) {
	for i := 0; i <= 6; i++ {
		s.plot(img, 8+i, 7+i)
		s.plot(img, 14-i, 7+i)
	}
}

func (s IconStyle) drawDots(img *image.RGBA) {
	for _, x := range []int{7, 11, 15} {
		s.plot(img, x, 11)
		s.plot(img, x-1, 11)
		s.plot(img, x, 12)
		s.plot(img, x-1, 12)
	}
}

func (s IconStyle) drawLock(img *image.RGBA) {
	for y := 10; y <= 15; y++ {
		for x := 8; x <= 14; x++ {
			if y == 10 || y == 15 || x == 8 || x == 14 {
				s.plot(img, x, y)
			}
		}
	}
	for y := 6; y <= 8; y++ {
		s.plot(img, 9, y)
		s.plot(img, 13, y)
	}
	for x := 9; x <= 13; x++ {
		s.plot(img, x, 6)
	}
}
