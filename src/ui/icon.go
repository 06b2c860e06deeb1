package ui

import "fyne.io/fyne/v2"

// SVG content for the tray icon: a screen with two subtitle lines.
const svgContent = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <rect x="1.5" y="2.5" width="13" height="9" rx="1" fill="none" stroke="#333333" stroke-width="1.2"/>
  <rect x="3" y="7" width="10" height="3" fill="#0078d4" opacity="0.8"/>
  <line x1="4" y1="8" x2="10" y2="8" stroke="#ffffff" stroke-width="0.8"/>
  <line x1="4" y1="9.2" x2="8" y2="9.2" stroke="#ffffff" stroke-width="0.8"/>
  <line x1="6" y1="13.5" x2="10" y2="13.5" stroke="#333333" stroke-width="1.2" stroke-linecap="round"/>
</svg>`

var Icon = fyne.NewStaticResource("game-translator.svg", []byte(svgContent))
