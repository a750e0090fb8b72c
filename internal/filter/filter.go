// Package filter 将稀疏的搜索条件编译为参数化 SQL。
//
// 每个条件先转换为谓词描述 Clause（操作 + 绑定参数），再按实体对应的固定模板
// 拼接到 "WHERE 1=1" 之后。用户输入只出现在 Params 中，不会进入 SQL 文本。
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFilter 过滤条件本身不合法（未知实体、时间区间颠倒）
var ErrInvalidFilter = errors.New("invalid filter")

// Entity 可搜索的实体，取值即表名
type Entity string

const (
	Sports     Entity = "sports"
	Events     Entity = "events"
	Selections Entity = "selections"
)

// TimeRange 闭区间 [Start, End]
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Filter 搜索条件，nil 表示不约束；零值（如 0）同样生效
type Filter struct {
	NameRegex           *string
	MinActiveEvents     *int64
	MinActiveSelections *int64
	ScheduledStart      *TimeRange
}

// IsEmpty 没有任何条件
func (f Filter) IsEmpty() bool {
	return f.NameRegex == nil && f.MinActiveEvents == nil && f.MinActiveSelections == nil && f.ScheduledStart == nil
}

// Op 谓词类型
type Op int

const (
	OpNameRegex Op = iota + 1
	OpMinActiveEvents
	OpMinActiveSelections
	OpScheduledStart
)

func (o Op) String() string {
	switch o {
	case OpNameRegex:
		return "name_regex"
	case OpMinActiveEvents:
		return "min_active_events"
	case OpMinActiveSelections:
		return "min_active_selections"
	case OpScheduledStart:
		return "scheduled_start"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// 绑定参数名
const (
	ParamNameRegex           = "name_regex"
	ParamMinActiveEvents     = "min_active_events"
	ParamMinActiveSelections = "min_active_selections"
	ParamScheduledStartFrom  = "scheduled_start_from"
	ParamScheduledStartTo    = "scheduled_start_to"
)

// Clause 单个谓词描述
type Clause struct {
	Op     Op
	Params map[string]interface{}
}

// Statement 编译结果：SQL 文本 + 命名参数（gorm 的 @name 语法）
// Clauses 保留编译前的谓词描述，便于不经数据库检查或求值
type Statement struct {
	Entity  Entity
	SQL     string
	Params  map[string]interface{}
	Clauses []Clause
}

// Args 作为 gorm Raw 的可变参数；没有参数时返回 nil，避免多余的绑定变量
func (s Statement) Args() []interface{} {
	if len(s.Params) == 0 {
		return nil
	}
	return []interface{}{s.Params}
}

// templates 实体 -> 谓词 -> SQL 片段。实体不支持的谓词不在表中，对应条件被忽略。
var templates = map[Entity]map[Op]string{
	Sports: {
		OpNameRegex:       "sports.name ~ @" + ParamNameRegex,
		OpMinActiveEvents: "(SELECT COUNT(*) FROM events e WHERE e.sport_id = sports.id AND e.active = TRUE) >= @" + ParamMinActiveEvents,
	},
	Events: {
		OpNameRegex: "events.name ~ @" + ParamNameRegex,
		// 同一运动下的活跃赛事数（含自身），不是自计数
		OpMinActiveEvents:     "(SELECT COUNT(*) FROM events e WHERE e.sport_id = events.sport_id AND e.active = TRUE) >= @" + ParamMinActiveEvents,
		OpMinActiveSelections: "(SELECT COUNT(*) FROM selections s WHERE s.event_id = events.id AND s.active = TRUE) >= @" + ParamMinActiveSelections,
		OpScheduledStart:      "events.scheduled_start BETWEEN @" + ParamScheduledStartFrom + " AND @" + ParamScheduledStartTo,
	},
	Selections: {
		OpNameRegex: "selections.name ~ @" + ParamNameRegex,
		// 选项所属赛事所在运动的活跃赛事数
		OpMinActiveEvents: "(SELECT COUNT(*) FROM events e WHERE e.sport_id = (SELECT pe.sport_id FROM events pe WHERE pe.id = selections.event_id) AND e.active = TRUE) >= @" + ParamMinActiveEvents,
		// 同一赛事下的活跃选项数（含自身）
		OpMinActiveSelections: "(SELECT COUNT(*) FROM selections s WHERE s.event_id = selections.event_id AND s.active = TRUE) >= @" + ParamMinActiveSelections,
		// 按父赛事的计划开始时间过滤
		OpScheduledStart: "(SELECT e.scheduled_start FROM events e WHERE e.id = selections.event_id) BETWEEN @" + ParamScheduledStartFrom + " AND @" + ParamScheduledStartTo,
	},
}

// Supports 实体是否支持某谓词
func Supports(entity Entity, op Op) bool {
	_, ok := templates[entity][op]
	return ok
}

// Clauses 将过滤条件转换为该实体适用的谓词列表，顺序固定
func Clauses(entity Entity, f Filter) ([]Clause, error) {
	tpl, ok := templates[entity]
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity %q", ErrInvalidFilter, entity)
	}

	var clauses []Clause
	add := func(op Op, params map[string]interface{}) {
		if _, ok := tpl[op]; ok {
			clauses = append(clauses, Clause{Op: op, Params: params})
		}
	}

	if f.NameRegex != nil {
		add(OpNameRegex, map[string]interface{}{ParamNameRegex: *f.NameRegex})
	}
	if f.MinActiveEvents != nil {
		add(OpMinActiveEvents, map[string]interface{}{ParamMinActiveEvents: *f.MinActiveEvents})
	}
	if f.MinActiveSelections != nil {
		add(OpMinActiveSelections, map[string]interface{}{ParamMinActiveSelections: *f.MinActiveSelections})
	}
	if f.ScheduledStart != nil && Supports(entity, OpScheduledStart) {
		r := f.ScheduledStart
		if r.End.Before(r.Start) {
			return nil, fmt.Errorf("%w: scheduled_start range end %s is before start %s",
				ErrInvalidFilter, r.End.Format(time.RFC3339), r.Start.Format(time.RFC3339))
		}
		add(OpScheduledStart, map[string]interface{}{
			ParamScheduledStartFrom: r.Start,
			ParamScheduledStartTo:   r.End,
		})
	}
	return clauses, nil
}

// Compile 生成 "SELECT * FROM <entity> WHERE 1=1 AND ... ORDER BY <entity>.id"
func Compile(entity Entity, f Filter) (Statement, error) {
	clauses, err := Clauses(entity, f)
	if err != nil {
		return Statement{}, err
	}

	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(string(entity))
	b.WriteString(" WHERE 1=1")

	params := make(map[string]interface{})
	for _, c := range clauses {
		b.WriteString(" AND ")
		b.WriteString(templates[entity][c.Op])
		for k, v := range c.Params {
			params[k] = v
		}
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(string(entity))
	b.WriteString(".id")

	return Statement{Entity: entity, SQL: b.String(), Params: params, Clauses: clauses}, nil
}
