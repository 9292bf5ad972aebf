package conversation

import "mock-interview/internal/speech"

// transcriptBuffer хранит текст ответа в текущем ходе.
// Каждое обновление распознавания перезаписывает текст целиком.
type transcriptBuffer struct {
	text string
}

// Update заменяет текст склейкой всех сегментов. Обновление, которое
// укоротило бы текст, отбрасывается: в пределах захвата буфер только растет.
func (b *transcriptBuffer) Update(segments []speech.Segment) bool {
	text := speech.JoinSegments(segments)
	if len(text) < len(b.text) || text == b.text {
		return false
	}
	b.text = text
	return true
}

func (b *transcriptBuffer) Reset() {
	b.text = ""
}

func (b *transcriptBuffer) String() string {
	return b.text
}
