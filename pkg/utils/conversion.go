package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// WordsToFloat32 monta um float32 IEEE-754 a partir de duas palavras de 16
// bits na ordem em que saíram do CLP. Com swapped, a palavra baixa vem
// primeiro (ordem padrão do FC6A); sem swapped, a palavra alta vem primeiro.
func WordsToFloat32(first, second uint16, swapped bool) float32 {
	var bits uint32
	if swapped {
		bits = uint32(second)<<16 | uint32(first)
	} else {
		bits = uint32(first)<<16 | uint32(second)
	}
	return math.Float32frombits(bits)
}

// Float32ToWords decompõe um float32 IEEE-754 nas duas palavras de 16 bits a
// escrever no CLP, na ordem determinada por swapped. Inversa de WordsToFloat32.
func Float32ToWords(val float32, swapped bool) (first, second uint16) {
	bits := math.Float32bits(val)
	hi := uint16(bits >> 16)
	lo := uint16(bits & 0xFFFF)
	if swapped {
		return lo, hi
	}
	return hi, lo
}

// HexWordToUint16 converte uma palavra hexadecimal ASCII de um quadro FC6A
// (ex: "3F80") para uint16
func HexWordToUint16(hexStr string) (uint16, error) {
	hexStr = strings.TrimPrefix(hexStr, "0x")
	val, err := strconv.ParseUint(hexStr, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("palavra hexadecimal inválida %q: %w", hexStr, err)
	}
	return uint16(val), nil
}

// FormatFloat formata um float com precisão máxima dada, removendo zeros à
// direita
func FormatFloat(value float64, precision int) string {
	format := "%." + strconv.Itoa(precision) + "f"
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf(format, value), "0"), ".")
}
