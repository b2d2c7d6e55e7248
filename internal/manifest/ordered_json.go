package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	expectedObjectMessageConstant      = "expected a JSON object"
	trailingDataMessageConstant        = "unexpected data after JSON object"
	objectKeyTypeErrorTemplateConstant = "unexpected object key token %v"
	jsonObjectOpenConstant             = '{'
	jsonObjectCloseConstant            = '}'
	jsonMemberSeparatorConstant        = ','
	jsonKeyValueSeparatorConstant      = ':'
	jsonIndentPrefixConstant           = ""
	jsonIndentConstant                 = "  "
	jsonNullLiteralConstant            = "null"
)

type objectMember struct {
	Key   string
	Value json.RawMessage
}

// decodeObject splits a JSON object into its members, keeping document order.
func decodeObject(data []byte) ([]objectMember, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	openingToken, tokenError := decoder.Token()
	if tokenError != nil {
		return nil, tokenError
	}
	if delimiter, isDelimiter := openingToken.(json.Delim); !isDelimiter || delimiter != jsonObjectOpenConstant {
		return nil, errors.New(expectedObjectMessageConstant)
	}

	members := []objectMember{}
	for decoder.More() {
		keyToken, keyError := decoder.Token()
		if keyError != nil {
			return nil, keyError
		}
		key, isString := keyToken.(string)
		if !isString {
			return nil, fmt.Errorf(objectKeyTypeErrorTemplateConstant, keyToken)
		}
		var value json.RawMessage
		if decodeError := decoder.Decode(&value); decodeError != nil {
			return nil, decodeError
		}
		members = append(members, objectMember{Key: key, Value: value})
	}

	if _, closingError := decoder.Token(); closingError != nil {
		return nil, closingError
	}
	if _, trailingError := decoder.Token(); !errors.Is(trailingError, io.EOF) {
		return nil, errors.New(trailingDataMessageConstant)
	}

	return members, nil
}

// encodeObject writes members as a compact JSON object in the given order.
func encodeObject(members []objectMember) ([]byte, error) {
	buffer := &bytes.Buffer{}
	buffer.WriteByte(jsonObjectOpenConstant)
	for memberIndex, member := range members {
		if memberIndex > 0 {
			buffer.WriteByte(jsonMemberSeparatorConstant)
		}
		encodedKey, keyError := encodeJSONValue(member.Key)
		if keyError != nil {
			return nil, keyError
		}
		buffer.Write(encodedKey)
		buffer.WriteByte(jsonKeyValueSeparatorConstant)
		if len(member.Value) == 0 {
			buffer.WriteString(jsonNullLiteralConstant)
			continue
		}
		buffer.Write(member.Value)
	}
	buffer.WriteByte(jsonObjectCloseConstant)
	return buffer.Bytes(), nil
}

// encodeJSONValue marshals a value without HTML escaping or a trailing newline.
func encodeJSONValue(value any) ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return nil, encodeError
	}
	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}

// indentJSON pretty prints compact JSON with a two-space indent and a trailing newline.
func indentJSON(compact []byte) ([]byte, error) {
	buffer := &bytes.Buffer{}
	if indentError := json.Indent(buffer, compact, jsonIndentPrefixConstant, jsonIndentConstant); indentError != nil {
		return nil, indentError
	}
	buffer.WriteByte('\n')
	return buffer.Bytes(), nil
}
