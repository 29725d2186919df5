package inventory

import "github.com/lmoreira/acervo/internal/model"

// DefaultCatalog returns the starter catalog used when no items snapshot
// exists yet (first run or wiped storage).
func DefaultCatalog() []model.Item {
	return []model.Item{
		{
			ID:          "1",
			Name:        "Kit Robótica Iniciante v2",
			Category:    "Tecnologia",
			Description: "Conjunto completo para introdução à lógica de programação e montagem de circuitos básicos.",
			Images:      []string{"https://images.unsplash.com/photo-1561557944-6e7860d1a7eb?auto=format&fit=crop&q=80&w=400"},
			Status:      model.StatusAvailable,
			Location:    "Armário A - Prateleira 2",
			Quantity:    5,
			Components: []model.Component{
				{ID: "c1", Name: "Placa Microcontroladora", Quantity: 1},
				{ID: "c2", Name: "Sensores de Distância", Quantity: 2},
				{ID: "c3", Name: "Cabos Jumper", Quantity: 20},
				{ID: "c4", Name: "Chassi de Acrílico", Quantity: 1},
			},
		},
		{
			ID:              "2",
			Name:            "Microscópio Binocular Óptico",
			Category:        "Ciências",
			Description:     "Equipamento de alta precisão para observação de lâminas biológicas com aumento de até 1000x.",
			Images:          []string{"https://images.unsplash.com/photo-1516339901600-2e1a6298ed70?auto=format&fit=crop&q=80&w=400"},
			Status:          model.StatusLoaned,
			CurrentBorrower: "Prof. Ricardo Silva",
			Location:        "Laboratório 1",
			Quantity:        2,
			Components: []model.Component{
				{ID: "c5", Name: "Lentes Oculares 10x", Quantity: 2},
				{ID: "c6", Name: "Objetivas (4x, 10x, 40x, 100x)", Quantity: 4},
				{ID: "c7", Name: "Capa Protetora", Quantity: 1},
			},
		},
		{
			ID:          "3",
			Name:        "Maleta de Jogos Matemáticos",
			Category:    "Matemática",
			Description: "Diversos jogos para ensino lúdico de frações, geometria e aritmética.",
			Images:      []string{"https://images.unsplash.com/photo-1587654780291-39c9404d746b?auto=format&fit=crop&q=80&w=400"},
			Status:      model.StatusAvailable,
			Location:    "Sala de Recursos - Gaveta 4",
			Quantity:    10,
			Components: []model.Component{
				{ID: "c8", Name: "Blocos Lógicos", Quantity: 48},
				{ID: "c9", Name: "Tangram de Madeira", Quantity: 5},
				{ID: "c10", Name: "Dominó de Frações", Quantity: 2},
			},
		},
		{
			ID:                "4",
			Name:              "Projetor Multimídia Portátil",
			Category:          "Audiovisual",
			Description:       "Projetor compacto com entrada HDMI e conexão Wi-Fi para apresentações em sala.",
			Images:            []string{"https://images.unsplash.com/photo-1535016120720-40c646bebbbb?auto=format&fit=crop&q=80&w=400"},
			Status:            model.StatusMaintenance,
			DefectDescription: "Em revisão no suporte técnico",
			Location:          "Suporte Técnico",
			Quantity:          1,
			Components: []model.Component{
				{ID: "c11", Name: "Cabo HDMI 3m", Quantity: 1},
				{ID: "c12", Name: "Controle Remoto", Quantity: 1},
				{ID: "c13", Name: "Fonte de Alimentação", Quantity: 1},
			},
		},
	}
}
