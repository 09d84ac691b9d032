package ycf

import (
	"fmt"
	"strconv"
)

// Parser builds a map[string]any tree from a token stream: bare key-value
// pairs, `[table]` / `[[array.table]]` headers, dotted keys, inline
// tables, and arrays (including arrays of 2-tuples for delay/action and
// untargetable-window entries).
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	root      map[string]any
	current   map[string]any
}

func NewParser(input []byte) *Parser {
	l := NewLexer(input)
	p := &Parser{lexer: l, root: make(map[string]any)}
	p.nextToken()
	p.nextToken()
	p.current = p.root
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
	for p.peekToken.Type == TokenComment {
		p.peekToken = p.lexer.NextToken()
	}
}

func (p *Parser) Parse() (map[string]any, error) {
	for p.curToken.Type != TokenEOF {
		if p.curToken.Type == TokenNewline {
			p.nextToken()
			continue
		}
		if err := p.parseStatement(); err != nil {
			return nil, err
		}
	}
	return p.root, nil
}

func (p *Parser) parseStatement() error {
	switch p.curToken.Type {
	case TokenLBracket:
		return p.parseTableDeclaration()
	case TokenIdent, TokenString:
		return p.parseKeyValuePair(p.current)
	case TokenError:
		return fmt.Errorf("lexing error line %d: %s", p.curToken.Line, p.curToken.Literal)
	default:
		return fmt.Errorf("unexpected token line %d: %s", p.curToken.Line, p.curToken.String())
	}
}

func (p *Parser) parseTableDeclaration() error {
	isArray := false
	if p.peekToken.Type == TokenLBracket {
		p.nextToken()
		isArray = true
	}
	p.nextToken()

	keys, err := p.parseKeyParts()
	if err != nil {
		return err
	}

	if isArray {
		if p.curToken.Type != TokenRBracket {
			return fmt.Errorf("expected closing bracket for array table at line %d", p.curToken.Line)
		}
		p.nextToken()
	}
	if p.curToken.Type != TokenRBracket {
		return fmt.Errorf("expected closing bracket for table at line %d", p.curToken.Line)
	}
	p.nextToken()

	return p.setTableScope(keys, isArray)
}

func (p *Parser) setTableScope(keys []string, isArrayOfTables bool) error {
	var ptr any = p.root

	for i, key := range keys {
		isLast := i == len(keys)-1
		currentMap, ok := ptr.(map[string]any)
		if !ok {
			return fmt.Errorf("key path conflict: %s is not a table", key)
		}

		if isLast {
			if isArrayOfTables {
				var slice []map[string]any
				if val, exists := currentMap[key]; exists {
					s, ok := val.([]map[string]any)
					if !ok {
						return fmt.Errorf("key conflict: %s is not an array of tables", key)
					}
					slice = s
				}
				newMap := make(map[string]any)
				slice = append(slice, newMap)
				currentMap[key] = slice
				p.current = newMap
			} else {
				var targetMap map[string]any
				if val, exists := currentMap[key]; exists {
					m, ok := val.(map[string]any)
					if !ok {
						return fmt.Errorf("key conflict: %s is not a table", key)
					}
					targetMap = m
				} else {
					targetMap = make(map[string]any)
					currentMap[key] = targetMap
				}
				p.current = targetMap
			}
		} else {
			if val, exists := currentMap[key]; exists {
				if m, ok := val.(map[string]any); ok {
					ptr = m
					continue
				}
				if slice, ok := val.([]map[string]any); ok {
					if len(slice) == 0 {
						return fmt.Errorf("cannot traverse empty array table %s", key)
					}
					ptr = slice[len(slice)-1]
					continue
				}
				return fmt.Errorf("intermediate key %s is not a table", key)
			}
			newMap := make(map[string]any)
			currentMap[key] = newMap
			ptr = newMap
		}
	}
	return nil
}

func (p *Parser) parseKeyValuePair(scope map[string]any) error {
	keys, err := p.parseKeyParts()
	if err != nil {
		return err
	}

	if p.curToken.Type != TokenEqual {
		return fmt.Errorf("expected '=' after key at line %d, got %s", p.curToken.Line, p.curToken.String())
	}
	p.nextToken()

	val, err := p.parseValue()
	if err != nil {
		return err
	}

	return assignValue(scope, keys, val)
}

func assignValue(scope map[string]any, keys []string, val any) error {
	currentMap := scope
	for i, key := range keys {
		if i == len(keys)-1 {
			if _, exists := currentMap[key]; exists {
				return fmt.Errorf("duplicate key %s", key)
			}
			currentMap[key] = val
			return nil
		}
		if existing, exists := currentMap[key]; exists {
			m, ok := existing.(map[string]any)
			if !ok {
				return fmt.Errorf("intermediate key %s is not a table", key)
			}
			currentMap = m
			continue
		}
		newMap := make(map[string]any)
		currentMap[key] = newMap
		currentMap = newMap
	}
	return nil
}

func (p *Parser) parseKeyParts() ([]string, error) {
	var keys []string
	for {
		if p.curToken.Type != TokenIdent && p.curToken.Type != TokenString {
			return nil, fmt.Errorf("expected key at line %d, got %s", p.curToken.Line, p.curToken.String())
		}
		keys = append(keys, p.curToken.Literal)
		p.nextToken()

		if p.curToken.Type == TokenDot {
			p.nextToken()
			continue
		}
		break
	}
	return keys, nil
}

func (p *Parser) parseValue() (any, error) {
	switch p.curToken.Type {
	case TokenString:
		val := p.curToken.Literal
		p.nextToken()
		return val, nil
	case TokenInteger:
		val, _ := strconv.ParseInt(p.curToken.Literal, 10, 64)
		p.nextToken()
		return int(val), nil
	case TokenFloat:
		val, _ := strconv.ParseFloat(p.curToken.Literal, 64)
		p.nextToken()
		return val, nil
	case TokenBool:
		val := p.curToken.Literal == "true"
		p.nextToken()
		return val, nil
	case TokenLBracket:
		return p.parseArray()
	case TokenLBrace:
		return p.parseInlineTable()
	}
	return nil, fmt.Errorf("unexpected value token %s at line %d", p.curToken.String(), p.curToken.Line)
}

func (p *Parser) parseArray() ([]any, error) {
	p.nextToken()
	arr := make([]any, 0)

	for p.curToken.Type != TokenRBracket {
		if p.curToken.Type == TokenNewline {
			p.nextToken()
			continue
		}

		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)

		switch p.curToken.Type {
		case TokenComma:
			p.nextToken()
		case TokenNewline:
			p.nextToken()
		case TokenRBracket:
		default:
			return nil, fmt.Errorf("expected comma or closing bracket in array at line %d", p.curToken.Line)
		}
	}
	p.nextToken()
	return arr, nil
}

func (p *Parser) parseInlineTable() (map[string]any, error) {
	p.nextToken()
	m := make(map[string]any)

	for p.curToken.Type != TokenRBrace {
		if p.curToken.Type == TokenNewline {
			p.nextToken()
			continue
		}

		keys, err := p.parseKeyParts()
		if err != nil {
			return nil, err
		}
		if p.curToken.Type != TokenEqual {
			return nil, fmt.Errorf("expected '=' in inline table at line %d", p.curToken.Line)
		}
		p.nextToken()

		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := assignValue(m, keys, val); err != nil {
			return nil, err
		}

		if p.curToken.Type == TokenComma {
			p.nextToken()
		} else if p.curToken.Type != TokenRBrace {
			return nil, fmt.Errorf("expected comma or closing brace in inline table at line %d", p.curToken.Line)
		}
	}
	p.nextToken()
	return m, nil
}
